package repository

import (
	"context"
	"time"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
)

// ShareRepository define el puerto de persistencia para ShareRecord.
type ShareRepository interface {
	Create(ctx context.Context, share *entity.ShareRecord) error
	Update(ctx context.Context, share *entity.ShareRecord) error
	// Transition cambia el estado de from a to solo si el registro sigue en from. Si otro proceso
	// ya lo movió devuelve domain.ErrConflict.
	Transition(ctx context.Context, id, from, to string, at time.Time) error
	GetByToken(ctx context.Context, token string) (*entity.ShareRecord, error)
	// List historial de envíos de la empresa; method vacío = todos.
	List(ctx context.Context, companyID, method string) ([]*entity.ShareRecord, error)
	// ListScheduled envíos por correo programados de todas las empresas.
	ListScheduled(ctx context.Context) ([]*entity.ShareRecord, error)
	// IncrementClicks suma una vista al enlace.
	IncrementClicks(ctx context.Context, id string) error
}
