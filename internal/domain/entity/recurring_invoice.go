package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
)

// DefaultDueAfterDays plazo de pago por defecto de las facturas generadas.
const DefaultDueAfterDays = 30

// RecurringInvoice regla que genera facturas para un cliente según una periodicidad.
// NextInvoiceDate es un valor derivado que se recalcula en cada alta o edición.
type RecurringInvoice struct {
	ID              string
	CompanyID       string
	ClientID        string
	ClientName      string
	Description     string
	Amount          decimal.Decimal
	Frequency       recurrence.Frequency
	StartDate       time.Time
	EndDate         *time.Time
	DueAfterDays    int
	IsActive        bool
	NextInvoiceDate time.Time
	TotalGenerated  int
	LastGeneratedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Ended indica si la regla ya pasó su fecha de fin respecto a today.
func (r *RecurringInvoice) Ended(today time.Time) bool {
	return r.EndDate != nil && recurrence.DateOf(today).After(recurrence.DateOf(*r.EndDate))
}
