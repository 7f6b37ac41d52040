package invoicing

import "github.com/shopspring/decimal"

// Status estado de una factura.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue" // solo asignable manualmente
	StatusDraft   Status = "draft"
)

// Valid indica si s es un estado conocido.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusOverdue, StatusDraft:
		return true
	}
	return false
}

// String implementa fmt.Stringer.
func (s Status) String() string { return string(s) }

// DeriveStatus calcula el estado de pago a partir de lo pagado y el total:
//
//	pagado >= total (con total > 0) → paid
//	pagado > 0                      → partial
//	en otro caso                    → pending
//
// No considera la fecha de vencimiento: "overdue" nunca se deriva.
func DeriveStatus(amountPaid, totalAmount decimal.Decimal) Status {
	if totalAmount.IsPositive() && amountPaid.GreaterThanOrEqual(totalAmount) {
		return StatusPaid
	}
	if amountPaid.IsPositive() {
		return StatusPartial
	}
	return StatusPending
}

// IsPaymentDerived indica si el estado lo gobierna DeriveStatus (pending/partial/paid).
// draft y overdue son etiquetas manuales.
func (s Status) IsPaymentDerived() bool {
	return s == StatusPending || s == StatusPartial || s == StatusPaid
}
