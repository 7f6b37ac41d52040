package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/testutil"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(desc, qty, price string) dto.InvoiceItemRequest {
	return dto.InvoiceItemRequest{Description: desc, Quantity: d(qty), UnitPrice: d(price)}
}

func newInvoiceUC(s *testutil.Store) *billing.InvoiceUseCase {
	return billing.NewInvoiceUseCase(s.Tx, s.Invoices, s.Payments, s.Clients, billing.WithClock(testutil.Clock(fixedNow)))
}

func sampleRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		ClientName:  "Globex",
		ClientEmail: "ap@globex.test",
		Items:       []dto.InvoiceItemRequest{item("Diseño web", "1", "2500"), item("Desarrollo", "1", "5000")},
		DueDate:     "2024-04-14",
	}
}

func TestInvoiceUseCase_CreateNumeraDesde1001(t *testing.T) {
	s := testutil.NewStore(t)
	uc := newInvoiceUC(s)
	ctx := context.Background()

	first, err := uc.Create(ctx, s.CompanyID, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1001), first.InvoiceNumber)
	assert.True(t, first.Amount.Equal(d("7500")))
	assert.True(t, first.Subtotal.Equal(d("7500")))
	assert.True(t, first.AmountPaid.IsZero())
	assert.Equal(t, "pending", first.Status)
	assert.Equal(t, "2024-04-14", first.DueDate)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Diseño web", first.Items[0].Description)

	second, err := uc.Create(ctx, s.CompanyID, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1002), second.InvoiceNumber)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestInvoiceUseCase_CreateConImpuesto(t *testing.T) {
	s := testutil.NewStore(t)
	req := sampleRequest()
	req.Items = []dto.InvoiceItemRequest{item("Horas", "3", "19.99"), item("Licencia", "1", "40")}
	req.TaxRate = d("8.25")

	got, err := newInvoiceUC(s).Create(context.Background(), s.CompanyID, req)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(d("99.97")))
	assert.True(t, got.TaxAmount.Equal(d("8.247525")))
	assert.True(t, got.Amount.Equal(d("108.217525")))
}

func TestInvoiceUseCase_CreateValidaciones(t *testing.T) {
	s := testutil.NewStore(t)
	uc := newInvoiceUC(s)
	ctx := context.Background()

	cases := map[string]func(r *dto.CreateInvoiceRequest){
		"sin líneas":       func(r *dto.CreateInvoiceRequest) { r.Items = nil },
		"sin cliente":      func(r *dto.CreateInvoiceRequest) { r.ClientName = "  " },
		"precio negativo":  func(r *dto.CreateInvoiceRequest) { r.Items[0].UnitPrice = d("-1") },
		"tasa fuera rango": func(r *dto.CreateInvoiceRequest) { r.TaxRate = d("101") },
		"fecha inválida":   func(r *dto.CreateInvoiceRequest) { r.DueDate = "14/04/2024" },
		"estado pagada":    func(r *dto.CreateInvoiceRequest) { r.Status = "paid" },
		"cliente inexistente": func(r *dto.CreateInvoiceRequest) {
			r.ClientID = "no-existe"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := sampleRequest()
			mutate(&req)
			_, err := uc.Create(ctx, s.CompanyID, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	list, err := uc.List(ctx, s.CompanyID, dto.ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "ninguna factura inválida se persiste")
}

func TestInvoiceUseCase_CreateBorrador(t *testing.T) {
	s := testutil.NewStore(t)
	req := sampleRequest()
	req.Status = "draft"
	got, err := newInvoiceUC(s).Create(context.Background(), s.CompanyID, req)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)
}

func TestInvoiceUseCase_CreaYEnlazaCliente(t *testing.T) {
	s := testutil.NewStore(t)
	uc := newInvoiceUC(s)
	ctx := context.Background()

	first, err := uc.Create(ctx, s.CompanyID, sampleRequest())
	require.NoError(t, err)
	require.NotEmpty(t, first.ClientID, "se registra el cliente nuevo")

	req := sampleRequest()
	req.ClientName = "GLOBEX"
	second, err := uc.Create(ctx, s.CompanyID, req)
	require.NoError(t, err)
	assert.Equal(t, first.ClientID, second.ClientID, "mismo nombre sin distinguir mayúsculas")

	c, err := s.Clients.GetByID(ctx, s.CompanyID, first.ClientID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "ap@globex.test", c.Email)
}

func TestInvoiceUseCase_CreateDesdeClienteExistente(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	clients := billing.NewClientUseCase(s.Clients, s.Invoices)
	c, err := clients.Create(ctx, s.CompanyID, dto.CreateClientRequest{Name: "Initech", Email: "pay@initech.test", Address: "Calle 1"})
	require.NoError(t, err)

	got, err := newInvoiceUC(s).Create(ctx, s.CompanyID, dto.CreateInvoiceRequest{
		ClientID: c.ID,
		Items:    []dto.InvoiceItemRequest{item("Consultoría", "2", "100")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Initech", got.ClientName)
	assert.Equal(t, "pay@initech.test", got.ClientEmail)
	assert.Equal(t, "Calle 1", got.ClientAddress)
}

func TestInvoiceUseCase_Preview(t *testing.T) {
	s := testutil.NewStore(t)
	got, err := newInvoiceUC(s).Preview(dto.PreviewInvoiceRequest{
		ClientName: "Globex",
		Items:      []dto.InvoiceItemRequest{item("A", "4", "25")},
		TaxRate:    d("10"),
	})
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(d("100")))
	assert.True(t, got.TaxAmount.Equal(d("10")))
	assert.True(t, got.Total.Equal(d("110")))
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].LineTotal.Equal(d("100")))

	_, err = newInvoiceUC(s).Preview(dto.PreviewInvoiceRequest{TaxRate: d("-1"), Items: []dto.InvoiceItemRequest{item("A", "1", "1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInvoiceUseCase_UpdateRecalculaYRederivaEstado(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	uc := newInvoiceUC(s)
	payments := billing.NewPaymentUseCase(s.Tx, s.Invoices, s.Payments, billing.WithClock(testutil.Clock(fixedNow)))

	inv, err := uc.Create(ctx, s.CompanyID, sampleRequest())
	require.NoError(t, err)
	_, err = payments.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: d("7500")})
	require.NoError(t, err)

	got, err := uc.Get(ctx, s.CompanyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)

	// Subir el monto deja la factura parcialmente pagada.
	updated, err := uc.Update(ctx, s.CompanyID, inv.ID, dto.UpdateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item("Diseño web", "1", "2500"), item("Desarrollo", "1", "5000"), item("Extra", "1", "500")},
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(d("8000")))
	assert.Equal(t, "partial", updated.Status)
	assert.Len(t, updated.Items, 3)
	assert.Len(t, updated.Payments, 1)
	assert.True(t, updated.Outstanding.Equal(d("500")))

	// Cambiar solo la tasa conserva las líneas.
	rate := d("10")
	updated, err = uc.Update(ctx, s.CompanyID, inv.ID, dto.UpdateInvoiceRequest{TaxRate: &rate})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 3)
	assert.True(t, updated.Amount.Equal(d("8800")))

	// Un estado explícito gana.
	status := "overdue"
	updated, err = uc.Update(ctx, s.CompanyID, inv.ID, dto.UpdateInvoiceRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "overdue", updated.Status)

	// overdue es manual: cambiar montos no lo pisa.
	zero := d("0")
	updated, err = uc.Update(ctx, s.CompanyID, inv.ID, dto.UpdateInvoiceRequest{TaxRate: &zero})
	require.NoError(t, err)
	assert.Equal(t, "overdue", updated.Status)
}

func TestInvoiceUseCase_UpdateStatusYDelete(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	uc := newInvoiceUC(s)

	inv, err := uc.Create(ctx, s.CompanyID, sampleRequest())
	require.NoError(t, err)

	_, err = uc.UpdateStatus(ctx, s.CompanyID, inv.ID, "cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.UpdateStatus(ctx, s.CompanyID, inv.ID, "overdue")
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)

	require.NoError(t, uc.Delete(ctx, s.CompanyID, inv.ID))
	_, err = uc.Get(ctx, s.CompanyID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, s.CompanyID, inv.ID), domain.ErrNotFound)
}

func TestInvoiceUseCase_ListFiltraPorEstado(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	uc := newInvoiceUC(s)

	_, err := uc.Create(ctx, s.CompanyID, sampleRequest())
	require.NoError(t, err)
	draft := sampleRequest()
	draft.Status = "draft"
	_, err = uc.Create(ctx, s.CompanyID, draft)
	require.NoError(t, err)

	list, err := uc.List(ctx, s.CompanyID, dto.ListInvoicesRequest{Status: "draft"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(1002), list.Items[0].InvoiceNumber)
	assert.Equal(t, 20, list.Page.Limit)

	_, err = uc.List(ctx, s.CompanyID, dto.ListInvoicesRequest{Status: "weird"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
