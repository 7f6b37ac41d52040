package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRecurringInvoiceRequest body para POST /api/recurring-invoices.
type CreateRecurringInvoiceRequest struct {
	ClientID     string          `json:"client_id,omitempty"`
	ClientName   string          `json:"client_name"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Frequency    string          `json:"frequency"`
	StartDate    string          `json:"start_date"`         // YYYY-MM-DD
	EndDate      string          `json:"end_date,omitempty"` // YYYY-MM-DD
	DueAfterDays *int            `json:"due_after_days,omitempty"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

// UpdateRecurringInvoiceRequest body para PUT /api/recurring-invoices/:id (campos opcionales).
type UpdateRecurringInvoiceRequest struct {
	ClientID     *string          `json:"client_id,omitempty"`
	ClientName   *string          `json:"client_name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Frequency    *string          `json:"frequency,omitempty"`
	StartDate    *string          `json:"start_date,omitempty"`
	EndDate      *string          `json:"end_date,omitempty"` // "" elimina la fecha de fin
	DueAfterDays *int             `json:"due_after_days,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
}

// RecurringInvoiceResponse regla recurrente.
type RecurringInvoiceResponse struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id,omitempty"`
	ClientName      string          `json:"client_name"`
	Description     string          `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Frequency       string          `json:"frequency"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date,omitempty"`
	DueAfterDays    int             `json:"due_after_days"`
	IsActive        bool            `json:"is_active"`
	NextInvoiceDate string          `json:"next_invoice_date"`
	TotalGenerated  int             `json:"total_generated"`
	LastGeneratedAt *time.Time      `json:"last_generated_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RecurringStatsResponse tarjetas del módulo de recurrentes.
// MonthlyRevenue suma solo reglas activas con frecuencia mensual.
type RecurringStatsResponse struct {
	TotalRules     int             `json:"total_rules"`
	ActiveRules    int             `json:"active_rules"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
	TotalGenerated int             `json:"total_generated"`
}

// GeneratedInvoice factura emitida por una regla en una corrida.
type GeneratedInvoice struct {
	RuleID        string          `json:"rule_id"`
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber int64           `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	Amount        decimal.Decimal `json:"amount"`
	NextDate      string          `json:"next_invoice_date"`
}

// GenerateRecurringResponse resumen de una corrida de generación.
type GenerateRecurringResponse struct {
	RunDate   string             `json:"run_date"`
	Evaluated int                `json:"evaluated"`
	Generated []GeneratedInvoice `json:"generated"`
	Skipped   int                `json:"skipped"`
	Failed    []string           `json:"failed,omitempty"` // ids de reglas con error
}
