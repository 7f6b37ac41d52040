package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
)

// FirstInvoiceNumber primer consecutivo de cada empresa.
const FirstInvoiceNumber int64 = 1001

// Invoice representa la cabecera de una factura.
// Amount es el total (subtotal + impuesto); Status debe ser coherente con AmountPaid
// según invoicing.DeriveStatus salvo las etiquetas manuales draft y overdue.
type Invoice struct {
	ID            string
	CompanyID     string
	InvoiceNumber int64
	ClientID      string // vacío si la factura solo tiene el nombre del cliente
	ClientName    string
	ClientEmail   string
	ClientAddress string
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal // porcentaje, 0–100
	TaxAmount     decimal.Decimal
	Amount        decimal.Decimal
	AmountPaid    decimal.Decimal
	DueDate       *time.Time // nil = sin fecha
	Description   string
	Notes         string
	Status        invoicing.Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Outstanding saldo pendiente de la factura.
func (i *Invoice) Outstanding() decimal.Decimal {
	return invoicing.Outstanding(i.Amount, i.AmountPaid)
}
