// Package testutil base SQLite en memoria para tests de casos de uso y handlers.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/infrastructure/sqlite"
)

// Store repositorios SQLite sobre una base migrada.
type Store struct {
	DB        *sql.DB
	Tx        *sqlite.TxRunner
	Companies *sqlite.CompanyRepo
	Clients   *sqlite.ClientRepo
	Invoices  *sqlite.InvoiceRepo
	Payments  *sqlite.PaymentRepo
	Recurring *sqlite.RecurringInvoiceRepo
	Shares    *sqlite.ShareRepo
	CompanyID string
}

// NewStore abre una base en memoria, aplica migraciones y registra una empresa.
func NewStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	s := &Store{
		DB:        db,
		Tx:        sqlite.NewTxRunner(db),
		Companies: sqlite.NewCompanyRepository(db),
		Clients:   sqlite.NewClientRepository(db),
		Invoices:  sqlite.NewInvoiceRepository(db),
		Payments:  sqlite.NewPaymentRepository(db),
		Recurring: sqlite.NewRecurringInvoiceRepository(db),
		Shares:    sqlite.NewShareRepository(db),
	}
	s.CompanyID = s.AddCompany(t, "Acme Studio")
	return s
}

// AddCompany registra otra empresa y devuelve su ID.
func (s *Store) AddCompany(t *testing.T, name string) string {
	t.Helper()
	now := time.Now().UTC()
	c := &entity.Company{ID: uuid.New().String(), Name: name, Email: "billing@acme.test", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Companies.Create(context.Background(), c))
	return c.ID
}

// Clock reloj fijo para WithClock.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Date fecha UTC a medianoche.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
