package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
	"github.com/jhoicas/InvoiceFlow-api/internal/testutil"
)

func newInvoice(companyID string, number int64, amount string) *entity.Invoice {
	due := testutil.Date(2024, 3, 31)
	now := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	return &entity.Invoice{
		CompanyID:     companyID,
		InvoiceNumber: number,
		ClientName:    "Globex",
		ClientEmail:   "ap@globex.test",
		Subtotal:      decimal.RequireFromString(amount),
		TaxRate:       decimal.Zero,
		TaxAmount:     decimal.Zero,
		Amount:        decimal.RequireFromString(amount),
		AmountPaid:    decimal.Zero,
		DueDate:       &due,
		Status:        invoicing.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestInvoiceRepo_RoundTrip(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	inv := newInvoice(s.CompanyID, 1001, "108.22")
	require.NoError(t, s.Invoices.Create(ctx, inv))
	require.NoError(t, s.Invoices.CreateItems(ctx, []*entity.InvoiceItem{
		{InvoiceID: inv.ID, Position: 1, Description: "Diseño", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("50.11")},
		{InvoiceID: inv.ID, Position: 2, Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("8")},
	}))

	got, err := s.Invoices.GetByID(ctx, s.CompanyID, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1001), got.InvoiceNumber)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("108.22")))
	assert.Equal(t, invoicing.StatusPending, got.Status)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2024-03-31", got.DueDate.Format(recurrence.DateLayout))
	assert.Empty(t, got.ClientID)

	items, err := s.Invoices.GetItems(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Diseño", items[0].Description)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("50.11")))

	missing, err := s.Invoices.GetByID(ctx, s.CompanyID, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	other, err := s.Invoices.GetByID(ctx, s.AddCompany(t, "Otra"), inv.ID)
	require.NoError(t, err)
	assert.Nil(t, other, "las facturas son por empresa")
}

func TestInvoiceRepo_NextNumberYDuplicado(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	n, err := s.Invoices.NextNumber(ctx, s.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, entity.FirstInvoiceNumber, n)

	require.NoError(t, s.Invoices.Create(ctx, newInvoice(s.CompanyID, n, "10")))
	n, err = s.Invoices.NextNumber(ctx, s.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), n)

	err = s.Invoices.Create(ctx, newInvoice(s.CompanyID, 1001, "10"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Otra empresa numera desde el principio.
	other := s.AddCompany(t, "Initech")
	n, err = s.Invoices.NextNumber(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, entity.FirstInvoiceNumber, n)
}

func TestInvoiceRepo_DeleteEnCascada(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	inv := newInvoice(s.CompanyID, 1001, "100")
	require.NoError(t, s.Invoices.Create(ctx, inv))
	require.NoError(t, s.Invoices.CreateItems(ctx, []*entity.InvoiceItem{
		{InvoiceID: inv.ID, Position: 1, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
	}))
	now := time.Now().UTC()
	require.NoError(t, s.Payments.Create(ctx, &entity.Payment{
		CompanyID: s.CompanyID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(40), Method: entity.PaymentMethodCash,
		Date: testutil.Date(2024, 3, 2), Reference: "PAY-1", RecordedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, s.Invoices.Delete(ctx, s.CompanyID, inv.ID))

	items, err := s.Invoices.GetItems(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	payments, err := s.Payments.ListByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestInvoiceRepo_ListFiltros(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	a := newInvoice(s.CompanyID, 1001, "10")
	b := newInvoice(s.CompanyID, 1002, "20")
	b.ClientName = "Umbrella Corp"
	b.Status = invoicing.StatusPaid
	require.NoError(t, s.Invoices.Create(ctx, a))
	require.NoError(t, s.Invoices.Create(ctx, b))

	all, err := s.Invoices.List(ctx, s.CompanyID, repository.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1002), all[0].InvoiceNumber, "más reciente primero")

	paid, err := s.Invoices.List(ctx, s.CompanyID, repository.InvoiceFilter{Status: invoicing.StatusPaid})
	require.NoError(t, err)
	require.Len(t, paid, 1)

	found, err := s.Invoices.List(ctx, s.CompanyID, repository.InvoiceFilter{Search: "umbrella"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.ID, found[0].ID)

	byNumber, err := s.Invoices.List(ctx, s.CompanyID, repository.InvoiceFilter{Search: "1001"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, a.ID, byNumber[0].ID)

	page, err := s.Invoices.List(ctx, s.CompanyID, repository.InvoiceFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1001), page[0].InvoiceNumber)
}

func TestClientRepo_GetByNameSinMayusculas(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	c := &entity.Client{ID: "c-1", CompanyID: s.CompanyID, Name: "Globex", Email: "ap@globex.test",
		Status: entity.ClientStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Clients.Create(ctx, c))

	got, err := s.Clients.GetByName(ctx, s.CompanyID, "  gLOBEX ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c-1", got.ID)

	list, err := s.Clients.List(ctx, s.CompanyID, repository.ClientFilter{Search: "GLOBEX.TEST"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, s.Clients.Create(ctx, c), domain.ErrDuplicate)
}

func TestRecurringRepo_ListActive(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	other := s.AddCompany(t, "Initech")
	now := time.Now().UTC()
	end := testutil.Date(2024, 12, 31)

	mk := func(companyID string, active bool) *entity.RecurringInvoice {
		return &entity.RecurringInvoice{
			CompanyID: companyID, ClientName: "Globex", Description: "Soporte", Amount: decimal.NewFromInt(500),
			Frequency: recurrence.Monthly, StartDate: testutil.Date(2024, 1, 15), EndDate: &end,
			DueAfterDays: 30, IsActive: active, NextInvoiceDate: testutil.Date(2024, 2, 15),
			CreatedAt: now, UpdatedAt: now,
		}
	}
	require.NoError(t, s.Recurring.Create(ctx, mk(s.CompanyID, true)))
	require.NoError(t, s.Recurring.Create(ctx, mk(s.CompanyID, false)))
	require.NoError(t, s.Recurring.Create(ctx, mk(other, true)))

	mine, err := s.Recurring.ListActive(ctx, s.CompanyID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, recurrence.Monthly, mine[0].Frequency)
	assert.Equal(t, "2024-02-15", mine[0].NextInvoiceDate.Format(recurrence.DateLayout))
	require.NotNil(t, mine[0].EndDate)
	assert.Nil(t, mine[0].LastGeneratedAt)

	all, err := s.Recurring.ListActive(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecurringRepo_AdvanceSoloDesdeLaFechaVigente(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	now := time.Date(2024, 2, 15, 6, 0, 0, 0, time.UTC)
	rule := &entity.RecurringInvoice{
		CompanyID: s.CompanyID, ClientName: "Globex", Description: "Soporte", Amount: decimal.NewFromInt(500),
		Frequency: recurrence.Monthly, StartDate: testutil.Date(2024, 1, 15), DueAfterDays: 30, IsActive: true,
		NextInvoiceDate: testutil.Date(2024, 2, 15), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Recurring.Create(ctx, rule))

	advanced := *rule
	advanced.NextInvoiceDate = testutil.Date(2024, 3, 15)
	advanced.LastGeneratedAt = &now
	require.NoError(t, s.Recurring.Advance(ctx, &advanced, rule.NextInvoiceDate))

	// Segunda escritura con la misma fecha de origen: la regla ya no está ahí.
	assert.ErrorIs(t, s.Recurring.Advance(ctx, &advanced, rule.NextInvoiceDate), domain.ErrConflict)

	got, err := s.Recurring.GetByID(ctx, s.CompanyID, rule.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.TotalGenerated)
	assert.Equal(t, "2024-03-15", got.NextInvoiceDate.Format(recurrence.DateLayout))
	require.NotNil(t, got.LastGeneratedAt)
}

func TestShareRepo_TokenYClicks(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	inv := newInvoice(s.CompanyID, 1001, "10")
	require.NoError(t, s.Invoices.Create(ctx, inv))
	now := time.Now().UTC()
	exp := now.Add(24 * time.Hour)

	link := &entity.ShareRecord{
		CompanyID: s.CompanyID, InvoiceID: inv.ID, InvoiceNumber: 1001, Method: entity.ShareMethodLink,
		Status: entity.ShareStatusActive, Token: "tok-1", Link: "http://x/shared/tok-1", ExpiresAt: &exp,
		AllowDownload: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Shares.Create(ctx, link))
	// Los envíos por email no llevan token: varios NULL no chocan con UNIQUE.
	for i := 0; i < 2; i++ {
		require.NoError(t, s.Shares.Create(ctx, &entity.ShareRecord{
			CompanyID: s.CompanyID, InvoiceID: inv.ID, InvoiceNumber: 1001, Method: entity.ShareMethodEmail,
			Recipient: "a@b.test", Status: entity.ShareStatusSent, CreatedAt: now, UpdatedAt: now,
		}))
	}

	require.NoError(t, s.Shares.IncrementClicks(ctx, link.ID))
	require.NoError(t, s.Shares.IncrementClicks(ctx, link.ID))
	got, err := s.Shares.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Clicks)
	assert.True(t, got.AllowDownload)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, exp, *got.ExpiresAt, time.Second)

	emails, err := s.Shares.List(ctx, s.CompanyID, entity.ShareMethodEmail)
	require.NoError(t, err)
	assert.Len(t, emails, 2)
	all, err := s.Shares.List(ctx, s.CompanyID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	dup := *link
	dup.ID = ""
	assert.ErrorIs(t, s.Shares.Create(ctx, &dup), domain.ErrDuplicate)
}
