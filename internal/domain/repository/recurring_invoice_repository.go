package repository

import (
	"context"
	"time"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
)

// RecurringInvoiceRepository define el puerto de persistencia para reglas recurrentes.
type RecurringInvoiceRepository interface {
	Create(ctx context.Context, rule *entity.RecurringInvoice) error
	Update(ctx context.Context, rule *entity.RecurringInvoice) error
	// Advance registra una emisión: suma 1 a total_generated y guarda NextInvoiceDate, LastGeneratedAt
	// y UpdatedAt de rule, solo si next_invoice_date sigue valiendo from. Si otra corrida ya avanzó
	// la regla devuelve domain.ErrConflict.
	Advance(ctx context.Context, rule *entity.RecurringInvoice, from time.Time) error
	Delete(ctx context.Context, companyID, id string) error
	GetByID(ctx context.Context, companyID, id string) (*entity.RecurringInvoice, error)
	List(ctx context.Context, companyID string) ([]*entity.RecurringInvoice, error)
	// ListActive devuelve las reglas activas; companyID vacío = todas las empresas.
	ListActive(ctx context.Context, companyID string) ([]*entity.RecurringInvoice, error)
}
