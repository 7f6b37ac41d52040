// Package storage elige el backend de persistencia (PostgreSQL o SQLite) según la configuración.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
	"github.com/jhoicas/InvoiceFlow-api/internal/infrastructure/postgres"
	"github.com/jhoicas/InvoiceFlow-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/InvoiceFlow-api/pkg/config"
)

// Repositories puertos de persistencia listos para inyectar en los casos de uso.
type Repositories struct {
	Companies repository.CompanyRepository
	Clients   repository.ClientRepository
	Invoices  repository.InvoiceRepository
	Payments  repository.PaymentRepository
	Recurring repository.RecurringInvoiceRepository
	Shares    repository.ShareRepository
	Tx        billing.BillingTxRunner
}

// Open conecta al backend configurado. Con migrate=true aplica antes las migraciones embebidas.
// El cierre devuelto libera el pool o la conexión.
func Open(ctx context.Context, cfg config.Config, migrate bool) (*Repositories, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return openSQLite(cfg.Storage.SQLitePath, migrate)
	case config.DriverPostgres, "":
		return openPostgres(ctx, cfg.DB, migrate)
	}
	return nil, nil, fmt.Errorf("storage: driver desconocido %q", cfg.Storage.Driver)
}

func openPostgres(ctx context.Context, cfg config.DBConfig, migrate bool) (*Repositories, func(), error) {
	if migrate {
		if err := postgres.Migrate(cfg.ConnectionString()); err != nil {
			return nil, nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return &Repositories{
		Companies: postgres.NewCompanyRepository(pool),
		Clients:   postgres.NewClientRepository(pool),
		Invoices:  postgres.NewInvoiceRepository(pool),
		Payments:  postgres.NewPaymentRepository(pool),
		Recurring: postgres.NewRecurringInvoiceRepository(pool),
		Shares:    postgres.NewShareRepository(pool),
		Tx:        postgres.NewTxRunner(pool),
	}, pool.Close, nil
}

func openSQLite(path string, migrate bool) (*Repositories, func(), error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := sqlite.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return &Repositories{
		Companies: sqlite.NewCompanyRepository(db),
		Clients:   sqlite.NewClientRepository(db),
		Invoices:  sqlite.NewInvoiceRepository(db),
		Payments:  sqlite.NewPaymentRepository(db),
		Recurring: sqlite.NewRecurringInvoiceRepository(db),
		Shares:    sqlite.NewShareRepository(db),
		Tx:        sqlite.NewTxRunner(db),
	}, func() { _ = db.Close() }, nil
}
