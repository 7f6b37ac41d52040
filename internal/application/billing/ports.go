package billing

import (
	"context"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye los repos de facturación.
// Con SQLite (una sola conexión) fn solo debe usar los repos que recibe.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		recurringRepo repository.RecurringInvoiceRepository,
	) error) error
}

// InvoiceDocument datos completos para renderizar una factura.
type InvoiceDocument struct {
	Invoice  *entity.Invoice
	Company  *entity.Company
	Items    []*entity.InvoiceItem
	Payments []*entity.Payment
	Link     string // enlace público opcional (se imprime como QR)
}

// InvoicePDFGenerator puerto para generar el PDF de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}
