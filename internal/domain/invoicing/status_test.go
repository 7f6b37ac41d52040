package invoicing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name  string
		paid  string
		total string
		want  invoicing.Status
	}{
		{"sin pagos", "0", "100", invoicing.StatusPending},
		{"pago parcial", "50", "100", invoicing.StatusPartial},
		{"pago exacto", "100", "100", invoicing.StatusPaid},
		{"sobrepago cuenta como pagada", "150", "100", invoicing.StatusPaid},
		{"centavo faltante", "99.99", "100", invoicing.StatusPartial},
		{"total cero sin pagos", "0", "0", invoicing.StatusPending},
		{"total cero con pago", "10", "0", invoicing.StatusPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := invoicing.DeriveStatus(decimal.RequireFromString(tc.paid), decimal.RequireFromString(tc.total))
			assert.Equal(t, tc.want, got)
		})
	}
}

// overdue es una etiqueta manual: ninguna combinación de montos la produce.
func TestDeriveStatus_NuncaOverdue(t *testing.T) {
	for paid := int64(0); paid <= 200; paid += 25 {
		got := invoicing.DeriveStatus(decimal.NewFromInt(paid), decimal.NewFromInt(100))
		assert.NotEqual(t, invoicing.StatusOverdue, got)
		assert.NotEqual(t, invoicing.StatusDraft, got)
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []invoicing.Status{"pending", "partial", "paid", "overdue", "draft"} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, invoicing.Status("cancelled").Valid())
	assert.False(t, invoicing.Status("").Valid())

	assert.True(t, invoicing.StatusPartial.IsPaymentDerived())
	assert.False(t, invoicing.StatusOverdue.IsPaymentDerived())
	assert.False(t, invoicing.StatusDraft.IsPaymentDerived())
}
