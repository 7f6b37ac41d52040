package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordPaymentRequest body para POST /api/payments.
type RecordPaymentRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Date      string          `json:"date,omitempty"`      // YYYY-MM-DD, defecto hoy
	Reference string          `json:"reference,omitempty"` // defecto PAY-<unix ms>
	Notes     string          `json:"notes,omitempty"`
}

// UpdatePaymentRequest body para PUT /api/payments/:id (campos opcionales).
type UpdatePaymentRequest struct {
	InvoiceID *string          `json:"invoice_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Method    *string          `json:"method,omitempty"`
	Date      *string          `json:"date,omitempty"`
	Reference *string          `json:"reference,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
}

// ListPaymentsRequest filtros de GET /api/payments.
type ListPaymentsRequest struct {
	Search    string `query:"search"`
	Method    string `query:"method"`
	InvoiceID string `query:"invoice_id"`
}

// PaymentResponse pago con datos de la factura asociada.
type PaymentResponse struct {
	ID            string          `json:"id"`
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber int64           `json:"invoice_number,omitempty"`
	ClientName    string          `json:"client_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Date          string          `json:"date"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes,omitempty"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// RecordPaymentResponse pago registrado y estado resultante de la factura.
type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

// PaymentStatsResponse tarjetas del módulo de pagos.
type PaymentStatsResponse struct {
	TotalReceived decimal.Decimal `json:"total_received"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	ThisMonth     decimal.Decimal `json:"this_month"`
	PaymentCount  int             `json:"payment_count"`
}

// AvailableInvoiceResponse factura con saldo pendiente (selector de "registrar pago").
type AvailableInvoiceResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber int64           `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	Amount        decimal.Decimal `json:"amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Status        string          `json:"status"`
}
