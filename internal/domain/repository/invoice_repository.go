package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
)

// InvoiceFilter criterios de listado de facturas. Search aplica sobre número y nombre del cliente.
type InvoiceFilter struct {
	Status   invoicing.Status
	ClientID string
	Search   string
	Limit    int // 0 = sin límite
	Offset   int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateItems(ctx context.Context, items []*entity.InvoiceItem) error
	// ReplaceItems borra las líneas actuales de la factura e inserta items.
	ReplaceItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error
	Update(ctx context.Context, invoice *entity.Invoice) error
	// UpdatePayment actualiza solo amount_paid y status (recalculo tras un pago).
	UpdatePayment(ctx context.Context, companyID, id string, amountPaid decimal.Decimal, status invoicing.Status) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error)
	// GetByIDForUpdate lee la factura bloqueando su fila hasta el fin de la transacción. Los
	// recálculos de amount_paid lo usan antes de sumar pagos.
	GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
	List(ctx context.Context, companyID string, filter InvoiceFilter) ([]*entity.Invoice, error)
	// Delete elimina la factura; líneas, pagos y envíos caen en cascada.
	Delete(ctx context.Context, companyID, id string) error
	// NextNumber devuelve el siguiente consecutivo de la empresa (el primero es entity.FirstInvoiceNumber).
	NextNumber(ctx context.Context, companyID string) (int64, error)
}
