package repository

import (
	"context"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
)

// ClientFilter criterios de listado de clientes.
// Search busca (sin distinguir mayúsculas) en nombre, email, empresa y teléfono.
type ClientFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Client, error)
	// GetByName busca por nombre exacto sin distinguir mayúsculas.
	GetByName(ctx context.Context, companyID, name string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, companyID, id string) error
	List(ctx context.Context, companyID string, filter ClientFilter) ([]*entity.Client, error)
}
