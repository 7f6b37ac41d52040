package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago admitidos.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodCheck        = "check"
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodOnline       = "online"
)

// ValidPaymentMethod indica si m es un medio de pago admitido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOnline:
		return true
	}
	return false
}

// Payment representa un abono a una factura. La suma de los pagos de una factura
// determina su AmountPaid.
type Payment struct {
	ID         string
	CompanyID  string
	InvoiceID  string
	Amount     decimal.Decimal
	Method     string
	Date       time.Time // fecha del pago (sin hora)
	Reference  string
	Notes      string
	RecordedAt time.Time
	UpdatedAt  time.Time
}

// SumPayments suma los montos de una lista de pagos.
func SumPayments(payments []*Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}
