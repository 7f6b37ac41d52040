package billing_test

import (
	"context"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
	"github.com/jhoicas/InvoiceFlow-api/internal/testutil"
)

func newPaymentUC(s *testutil.Store) *billing.PaymentUseCase {
	return billing.NewPaymentUseCase(s.Tx, s.Invoices, s.Payments, billing.WithClock(testutil.Clock(fixedNow)))
}

func createInvoice(t *testing.T, s *testutil.Store, client, amount string) *dto.InvoiceResponse {
	t.Helper()
	req := sampleRequest()
	req.ClientName = client
	req.Items = []dto.InvoiceItemRequest{item("Servicio", "1", amount)}
	inv, err := newInvoiceUC(s).Create(context.Background(), s.CompanyID, req)
	require.NoError(t, err)
	return inv
}

func TestPaymentUseCase_ParcialYLuegoPagada(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	uc := newPaymentUC(s)
	inv := createInvoice(t, s, "Globex", "1000")

	res, err := uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: d("400"), Method: "card"})
	require.NoError(t, err)
	assert.Equal(t, "partial", res.Invoice.Status)
	assert.True(t, res.Invoice.AmountPaid.Equal(d("400")))
	assert.Equal(t, "2024-03-15", res.Payment.Date, "fecha por defecto: hoy")
	assert.Equal(t, "PAY-1710493200000", res.Payment.Reference)
	assert.Equal(t, int64(1001), res.Payment.InvoiceNumber)

	res, err = uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: d("600"), Reference: "TRX-9", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "paid", res.Invoice.Status)
	assert.Equal(t, "cash", res.Payment.Method, "medio por defecto")
	assert.True(t, res.Invoice.Outstanding.IsZero())

	// Sobrepago: sigue pagada, saldo no negativo.
	res, err = uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: d("50")})
	require.NoError(t, err)
	assert.Equal(t, "paid", res.Invoice.Status)
	assert.True(t, res.Invoice.AmountPaid.Equal(d("1050")))
	assert.True(t, res.Invoice.Outstanding.IsZero())
}

func TestPaymentUseCase_RecordValidaciones(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	uc := newPaymentUC(s)
	inv := createInvoice(t, s, "Globex", "100")

	_, err := uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: d("10"), Method: "bitcoin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{Amount: d("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: "nope", Amount: d("10")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Factura de otra empresa.
	other := s.AddCompany(t, "Initech")
	_, err = uc.Record(ctx, other, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: d("10")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentUseCase_DeleteRetrocedeEstado(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	uc := newPaymentUC(s)
	inv := createInvoice(t, s, "Globex", "100")

	res, err := uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: inv.ID, Amount: d("100")})
	require.NoError(t, err)
	require.Equal(t, "paid", res.Invoice.Status)

	require.NoError(t, uc.Delete(ctx, s.CompanyID, res.Payment.ID))
	got, err := newInvoiceUC(s).Get(ctx, s.CompanyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.True(t, got.AmountPaid.IsZero())

	assert.ErrorIs(t, uc.Delete(ctx, s.CompanyID, res.Payment.ID), domain.ErrNotFound)
}

func TestPaymentUseCase_UpdateMueveEntreFacturas(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	uc := newPaymentUC(s)
	a := createInvoice(t, s, "Globex", "100")
	b := createInvoice(t, s, "Initech", "100")

	res, err := uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: a.ID, Amount: d("100")})
	require.NoError(t, err)

	target := b.ID
	amount := d("30")
	moved, err := uc.Update(ctx, s.CompanyID, res.Payment.ID, dto.UpdatePaymentRequest{InvoiceID: &target, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.InvoiceID)
	assert.Equal(t, int64(1002), moved.InvoiceNumber)

	invoices := newInvoiceUC(s)
	gotA, err := invoices.Get(ctx, s.CompanyID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", gotA.Status)
	assert.True(t, gotA.AmountPaid.IsZero())

	gotB, err := invoices.Get(ctx, s.CompanyID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "partial", gotB.Status)
	assert.True(t, gotB.AmountPaid.Equal(d("30")))

	bad := "2024-13-01"
	_, err = uc.Update(ctx, s.CompanyID, res.Payment.ID, dto.UpdatePaymentRequest{Date: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPaymentUseCase_ListStatsYDisponibles(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	uc := newPaymentUC(s)
	a := createInvoice(t, s, "Globex", "1000")
	b := createInvoice(t, s, "Umbrella", "500")
	createInvoice(t, s, "Initech", "250")

	_, err := uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: a.ID, Amount: d("300"), Method: "check", Reference: "CHK-77"})
	require.NoError(t, err)
	_, err = uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: b.ID, Amount: d("500"), Date: "2024-02-20"})
	require.NoError(t, err)

	all, err := uc.List(ctx, s.CompanyID, dto.ListPaymentsRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-03-15", all[0].Date, "más reciente primero")

	byRef, err := uc.List(ctx, s.CompanyID, dto.ListPaymentsRequest{Search: "chk"})
	require.NoError(t, err)
	require.Len(t, byRef, 1)
	byClient, err := uc.List(ctx, s.CompanyID, dto.ListPaymentsRequest{Search: "umbrella"})
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, b.ID, byClient[0].InvoiceID)
	byNumber, err := uc.List(ctx, s.CompanyID, dto.ListPaymentsRequest{Search: "1001"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	byMethod, err := uc.List(ctx, s.CompanyID, dto.ListPaymentsRequest{Method: "check"})
	require.NoError(t, err)
	require.Len(t, byMethod, 1)

	stats, err := uc.Stats(ctx, s.CompanyID)
	require.NoError(t, err)
	assert.True(t, stats.TotalReceived.Equal(d("800")))
	assert.True(t, stats.Outstanding.Equal(d("950")), "1750 facturado - 800 recibido")
	assert.True(t, stats.ThisMonth.Equal(d("300")))
	assert.Equal(t, 2, stats.PaymentCount)

	avail, err := uc.AvailableInvoices(ctx, s.CompanyID)
	require.NoError(t, err)
	require.Len(t, avail, 2, "la factura pagada completa no aparece")
	for _, inv := range avail {
		assert.NotEqual(t, b.ID, inv.ID)
	}
}

// traceTx envuelve el runner real y anota lo que cada transacción hace sobre facturas y pagos.
type traceTx struct {
	billing.BillingTxRunner
	calls []string
}

func (tt *traceTx) RunBilling(ctx context.Context, fn func(repository.InvoiceRepository, repository.PaymentRepository, repository.RecurringInvoiceRepository) error) error {
	return tt.BillingTxRunner.RunBilling(ctx, func(inv repository.InvoiceRepository, pay repository.PaymentRepository, rec repository.RecurringInvoiceRepository) error {
		return fn(&traceInvoices{InvoiceRepository: inv, tx: tt}, &tracePayments{PaymentRepository: pay, tx: tt}, rec)
	})
}

type traceInvoices struct {
	repository.InvoiceRepository
	tx *traceTx
}

func (r *traceInvoices) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	r.tx.calls = append(r.tx.calls, "lock "+id)
	return r.InvoiceRepository.GetByIDForUpdate(ctx, companyID, id)
}

func (r *traceInvoices) UpdatePayment(ctx context.Context, companyID, id string, amountPaid decimal.Decimal, status invoicing.Status) error {
	r.tx.calls = append(r.tx.calls, "write "+id)
	return r.InvoiceRepository.UpdatePayment(ctx, companyID, id, amountPaid, status)
}

type tracePayments struct {
	repository.PaymentRepository
	tx *traceTx
}

func (r *tracePayments) Create(ctx context.Context, p *entity.Payment) error {
	r.tx.calls = append(r.tx.calls, "payment")
	return r.PaymentRepository.Create(ctx, p)
}

func (r *tracePayments) Update(ctx context.Context, p *entity.Payment) error {
	r.tx.calls = append(r.tx.calls, "payment")
	return r.PaymentRepository.Update(ctx, p)
}

func (r *tracePayments) Delete(ctx context.Context, companyID, id string) error {
	r.tx.calls = append(r.tx.calls, "payment")
	return r.PaymentRepository.Delete(ctx, companyID, id)
}

func (r *tracePayments) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	r.tx.calls = append(r.tx.calls, "sum "+invoiceID)
	return r.PaymentRepository.ListByInvoice(ctx, invoiceID)
}

func TestPaymentUseCase_BloqueaLaFacturaAntesDeSumar(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	tx := &traceTx{BillingTxRunner: s.Tx}
	uc := billing.NewPaymentUseCase(tx, s.Invoices, s.Payments, billing.WithClock(testutil.Clock(fixedNow)))
	a := createInvoice(t, s, "Globex", "100")
	b := createInvoice(t, s, "Initech", "100")

	res, err := uc.Record(ctx, s.CompanyID, dto.RecordPaymentRequest{InvoiceID: a.ID, Amount: d("60")})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock " + a.ID, "payment", "sum " + a.ID, "write " + a.ID}, tx.calls)

	tx.calls = nil
	target := b.ID
	_, err = uc.Update(ctx, s.CompanyID, res.Payment.ID, dto.UpdatePaymentRequest{InvoiceID: &target})
	require.NoError(t, err)
	ids := []string{a.ID, b.ID}
	sort.Strings(ids)
	assert.Equal(t, []string{
		"lock " + ids[0], "lock " + ids[1], "payment",
		"sum " + b.ID, "write " + b.ID, "sum " + a.ID, "write " + a.ID,
	}, tx.calls, "ambas facturas se bloquean en orden de id antes de tocar pagos")

	tx.calls = nil
	require.NoError(t, uc.Delete(ctx, s.CompanyID, res.Payment.ID))
	assert.Equal(t, []string{"lock " + b.ID, "payment", "sum " + b.ID, "write " + b.ID}, tx.calls)

	got, err := newInvoiceUC(s).Get(ctx, s.CompanyID, b.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.IsZero())
	assert.Equal(t, "pending", got.Status)
}
