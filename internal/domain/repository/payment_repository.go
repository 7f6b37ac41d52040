package repository

import (
	"context"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
)

// PaymentFilter criterios de listado de pagos.
type PaymentFilter struct {
	InvoiceID string
	Method    string
}

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, companyID, id string) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error)
	// List devuelve los pagos de la empresa, del más reciente al más antiguo.
	List(ctx context.Context, companyID string, filter PaymentFilter) ([]*entity.Payment, error)
}
