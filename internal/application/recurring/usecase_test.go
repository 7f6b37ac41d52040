package recurring_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/recurring"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/testutil"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

func newUC(s *testutil.Store, now time.Time) *recurring.UseCase {
	return recurring.NewUseCase(s.Recurring, s.Clients, recurring.WithClock(testutil.Clock(now)))
}

func monthlyRule(start string) dto.CreateRecurringInvoiceRequest {
	return dto.CreateRecurringInvoiceRequest{
		ClientName:  "Globex",
		Description: "Mantenimiento mensual",
		Amount:      d("500"),
		Frequency:   "monthly",
		StartDate:   start,
	}
}

func TestUseCase_CreateCalculaProximaFecha(t *testing.T) {
	s := testutil.NewStore(t)
	uc := newUC(s, fixedNow)
	ctx := context.Background()

	future, err := uc.Create(ctx, s.CompanyID, monthlyRule("2024-04-01"))
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", future.NextInvoiceDate, "inicio futuro: primera fecha = inicio")
	assert.Equal(t, 30, future.DueAfterDays)
	assert.True(t, future.IsActive)

	past, err := uc.Create(ctx, s.CompanyID, monthlyRule("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, "2024-04-15", past.NextInvoiceDate, "inicio pasado: hoy + un período")

	req := monthlyRule("2024-01-01")
	req.Frequency = "weekly"
	req.DueAfterDays = intPtr(0)
	weekly, err := uc.Create(ctx, s.CompanyID, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-22", weekly.NextInvoiceDate)
	assert.Equal(t, 0, weekly.DueAfterDays)
}

func TestUseCase_CreateValidaciones(t *testing.T) {
	s := testutil.NewStore(t)
	uc := newUC(s, fixedNow)
	ctx := context.Background()

	cases := map[string]func(r *dto.CreateRecurringInvoiceRequest){
		"frecuencia desconocida": func(r *dto.CreateRecurringInvoiceRequest) { r.Frequency = "biweekly" },
		"monto cero":             func(r *dto.CreateRecurringInvoiceRequest) { r.Amount = decimal.Zero },
		"plazo negativo":         func(r *dto.CreateRecurringInvoiceRequest) { r.DueAfterDays = intPtr(-1) },
		"fin antes de inicio":    func(r *dto.CreateRecurringInvoiceRequest) { r.EndDate = "2024-03-01" },
		"sin inicio":             func(r *dto.CreateRecurringInvoiceRequest) { r.StartDate = "" },
		"sin cliente":            func(r *dto.CreateRecurringInvoiceRequest) { r.ClientName = "" },
		"cliente inexistente":    func(r *dto.CreateRecurringInvoiceRequest) { r.ClientID = "nope" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := monthlyRule("2024-03-10")
			mutate(&req)
			_, err := uc.Create(ctx, s.CompanyID, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUseCase_UpdateToggleYStats(t *testing.T) {
	s := testutil.NewStore(t)
	uc := newUC(s, fixedNow)
	ctx := context.Background()

	rule, err := uc.Create(ctx, s.CompanyID, monthlyRule("2024-04-01"))
	require.NoError(t, err)
	yearly := monthlyRule("2024-01-01")
	yearly.Frequency = "yearly"
	yearly.Amount = d("1200")
	_, err = uc.Create(ctx, s.CompanyID, yearly)
	require.NoError(t, err)

	freq := "quarterly"
	start := "2024-02-29"
	updated, err := uc.Update(ctx, s.CompanyID, rule.ID, dto.UpdateRecurringInvoiceRequest{Frequency: &freq, StartDate: &start})
	require.NoError(t, err)
	assert.Equal(t, "quarterly", updated.Frequency)
	assert.Equal(t, "2024-06-15", updated.NextInvoiceDate)

	bad := "fortnightly"
	_, err = uc.Update(ctx, s.CompanyID, rule.ID, dto.UpdateRecurringInvoiceRequest{Frequency: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	monthly := "monthly"
	_, err = uc.Update(ctx, s.CompanyID, rule.ID, dto.UpdateRecurringInvoiceRequest{Frequency: &monthly})
	require.NoError(t, err)

	stats, err := uc.Stats(ctx, s.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRules)
	assert.Equal(t, 2, stats.ActiveRules)
	assert.True(t, stats.MonthlyRevenue.Equal(d("500")), "solo reglas mensuales activas")

	toggled, err := uc.Toggle(ctx, s.CompanyID, rule.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	stats, err = uc.Stats(ctx, s.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveRules)
	assert.True(t, stats.MonthlyRevenue.IsZero())

	require.NoError(t, uc.Delete(ctx, s.CompanyID, rule.ID))
	_, err = uc.Get(ctx, s.CompanyID, rule.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, s.CompanyID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
