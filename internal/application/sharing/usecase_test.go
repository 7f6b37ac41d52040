package sharing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/sharing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
	"github.com/jhoicas/InvoiceFlow-api/internal/testutil"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type fakeMailer struct {
	mu   sync.Mutex
	sent []sharing.Email
	fail map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, e sharing.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, to := range e.To {
		if m.fail[to] {
			return errors.New("smtp: 550 mailbox unavailable")
		}
	}
	m.sent = append(m.sent, e)
	return nil
}

type fakePDF struct {
	calls []string
}

func (p *fakePDF) DownloadInvoicePDF(_ context.Context, _, invoiceID, link string) ([]byte, string, error) {
	p.calls = append(p.calls, invoiceID+"|"+link)
	return []byte("%PDF-1.4"), "factura_" + invoiceID + ".pdf", nil
}

type fixture struct {
	store  *testutil.Store
	mailer *fakeMailer
	pdf    *fakePDF
	clock  *time.Time
	uc     *sharing.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewStore(t)
	now := fixedNow
	f := &fixture{store: s, mailer: &fakeMailer{fail: map[string]bool{}}, pdf: &fakePDF{}, clock: &now}
	f.uc = sharing.NewUseCase(s.Invoices, s.Companies, s.Shares, f.pdf, f.mailer,
		sharing.Config{BaseURL: "https://app.invoiceflow.test/"},
		sharing.WithClock(func() time.Time { return *f.clock }))
	return f
}

func (f *fixture) invoice(t *testing.T, client, amount string) string {
	t.Helper()
	uc := billing.NewInvoiceUseCase(f.store.Tx, f.store.Invoices, f.store.Payments, f.store.Clients, billing.WithClock(testutil.Clock(fixedNow)))
	inv, err := uc.Create(context.Background(), f.store.CompanyID, dto.CreateInvoiceRequest{
		ClientName: client,
		Items:      []dto.InvoiceItemRequest{{Description: "Consultoría", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString(amount)}},
		DueDate:    "2024-04-14",
	})
	require.NoError(t, err)
	return inv.ID
}

func TestShareByEmail_EnviaPorDestinatario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Globex", "7500")

	out, err := f.uc.ShareByEmail(ctx, f.store.CompanyID, dto.ShareByEmailRequest{
		InvoiceIDs: []string{id, id},
		Recipients: []string{"ap@globex.test", " AP@globex.test ", "cfo@globex.test"},
		AttachPDF:  true,
	})
	require.NoError(t, err)
	require.Len(t, out, 2, "ids y correos duplicados se descartan")
	for _, r := range out {
		assert.Equal(t, "sent", r.Status)
		assert.Equal(t, "email", r.Method)
		assert.Equal(t, "Invoice #1001 from Acme Studio", r.Subject)
		require.NotNil(t, r.SentAt)
	}

	require.Len(t, f.mailer.sent, 2)
	msg := f.mailer.sent[0]
	assert.Contains(t, msg.Body, "Dear Globex,")
	assert.Contains(t, msg.Body, "- Amount: $7,500.00")
	assert.Contains(t, msg.Body, "- Due Date: 2024-04-14")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, []byte("%PDF-1.4"), msg.Attachments[0].Content)
	assert.Len(t, f.pdf.calls, 1, "un PDF por factura")
}

func TestShareByEmail_TextoPersonalizadoYPlantilla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Initech", "120")

	out, err := f.uc.ShareByEmail(ctx, f.store.CompanyID, dto.ShareByEmailRequest{
		InvoiceIDs: []string{id},
		Recipients: []string{"bill@initech.test"},
		Template:   sharing.TemplateReminder,
		Message:    "Hola {clientName}, faltan {amount}.",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Payment Reminder - Invoice #1001", out[0].Subject)
	assert.Equal(t, "Hola Initech, faltan $120.00.", f.mailer.sent[0].Body)
	assert.Empty(t, f.mailer.sent[0].Attachments)
	assert.Empty(t, f.pdf.calls)
}

func TestShareByEmail_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Globex", "100")

	cases := map[string]dto.ShareByEmailRequest{
		"sin destinatarios":     {InvoiceIDs: []string{id}},
		"email inválido":        {InvoiceIDs: []string{id}, Recipients: []string{"no-es-un-correo"}},
		"sin facturas":          {Recipients: []string{"a@b.test"}},
		"plantilla inexistente": {InvoiceIDs: []string{id}, Recipients: []string{"a@b.test"}, Template: "legal"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.ShareByEmail(ctx, f.store.CompanyID, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := f.uc.ShareByEmail(ctx, f.store.CompanyID, dto.ShareByEmailRequest{InvoiceIDs: []string{"nope"}, Recipients: []string{"a@b.test"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	other := f.store.AddCompany(t, "Otra")
	_, err = f.uc.ShareByEmail(ctx, other, dto.ShareByEmailRequest{InvoiceIDs: []string{id}, Recipients: []string{"a@b.test"}})
	assert.ErrorIs(t, err, domain.ErrNotFound, "la factura es de otra empresa")
}

func TestShareByEmail_FalloSMTPQuedaRegistrado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Globex", "100")
	f.mailer.fail["rebota@globex.test"] = true

	out, err := f.uc.ShareByEmail(ctx, f.store.CompanyID, dto.ShareByEmailRequest{
		InvoiceIDs: []string{id},
		Recipients: []string{"rebota@globex.test", "ok@globex.test"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "failed", out[0].Status)
	assert.Equal(t, "sent", out[1].Status)
}

func TestShareByEmail_ProgramadoYDespacho(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Globex", "100")
	at := fixedNow.Add(2 * time.Hour)

	out, err := f.uc.ShareByEmail(ctx, f.store.CompanyID, dto.ShareByEmailRequest{
		InvoiceIDs: []string{id},
		Recipients: []string{"ap@globex.test"},
		AttachPDF:  true,
		ScheduleAt: &at,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "scheduled", out[0].Status)
	assert.Nil(t, out[0].SentAt)
	assert.Empty(t, f.mailer.sent)

	n, err := f.uc.DispatchScheduled(ctx, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n, "todavía no es la hora")

	n, err = f.uc.DispatchScheduled(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, f.mailer.sent, 1)
	assert.Len(t, f.mailer.sent[0].Attachments, 1)

	n, err = f.uc.DispatchScheduled(ctx, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n, "no se reenvía")

	hist, err := f.uc.History(ctx, f.store.CompanyID, "email")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "sent", hist[0].Status)
}

// staleScheduled devuelve siempre la primera lectura de ListScheduled, como un segundo worker
// que listó antes de que el primero guardara el resultado.
type staleScheduled struct {
	repository.ShareRepository
	list []*entity.ShareRecord
}

func (r *staleScheduled) ListScheduled(ctx context.Context) ([]*entity.ShareRecord, error) {
	if r.list == nil {
		list, err := r.ShareRepository.ListScheduled(ctx)
		if err != nil {
			return nil, err
		}
		r.list = list
	}
	out := make([]*entity.ShareRecord, 0, len(r.list))
	for _, rec := range r.list {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func TestDispatchScheduled_UnRegistroSeEnviaUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Globex", "100")
	at := fixedNow.Add(time.Hour)
	_, err := f.uc.ShareByEmail(ctx, f.store.CompanyID, dto.ShareByEmailRequest{
		InvoiceIDs: []string{id}, Recipients: []string{"ap@globex.test"}, ScheduleAt: &at,
	})
	require.NoError(t, err)

	worker := sharing.NewUseCase(f.store.Invoices, f.store.Companies, &staleScheduled{ShareRepository: f.store.Shares},
		f.pdf, f.mailer, sharing.Config{}, sharing.WithClock(func() time.Time { return *f.clock }))

	n, err := worker.DispatchScheduled(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = worker.DispatchScheduled(ctx, at)
	require.NoError(t, err)
	assert.Zero(t, n, "el registro ya no está en scheduled")
	assert.Len(t, f.mailer.sent, 1)

	hist, err := f.uc.History(ctx, f.store.CompanyID, "email")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "sent", hist[0].Status)
}

type brokenShares struct {
	repository.ShareRepository
}

func (brokenShares) Create(context.Context, *entity.ShareRecord) error {
	return errors.New("insert share record: disk I/O error")
}

// Sin registro no sale ningún correo: reintentar la petición no duplica el envío.
func TestShareByEmail_SiNoSeGuardaNoSeEnvia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Globex", "100")
	uc := sharing.NewUseCase(f.store.Invoices, f.store.Companies, brokenShares{f.store.Shares},
		f.pdf, f.mailer, sharing.Config{}, sharing.WithClock(func() time.Time { return *f.clock }))

	_, err := uc.ShareByEmail(ctx, f.store.CompanyID, dto.ShareByEmailRequest{
		InvoiceIDs: []string{id}, Recipients: []string{"ap@globex.test"},
	})
	require.Error(t, err)
	_, err = uc.ShareWithTeam(ctx, f.store.CompanyID, dto.ShareWithTeamRequest{
		InvoiceIDs: []string{id}, Emails: []string{"ana@acme.test"},
	})
	require.Error(t, err)
	assert.Empty(t, f.mailer.sent)
}

// Una hora pasada no programa: se envía en el acto.
func TestShareByEmail_ScheduleAtPasadoEnviaYa(t *testing.T) {
	f := newFixture(t)
	id := f.invoice(t, "Globex", "100")
	past := fixedNow.Add(-time.Minute)

	out, err := f.uc.ShareByEmail(context.Background(), f.store.CompanyID, dto.ShareByEmailRequest{
		InvoiceIDs: []string{id}, Recipients: []string{"ap@globex.test"}, ScheduleAt: &past,
	})
	require.NoError(t, err)
	assert.Equal(t, "sent", out[0].Status)
	assert.Len(t, f.mailer.sent, 1)
}

func TestShareByLink_AbrirContarYExpirar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Globex", "7500")
	days := 7

	out, err := f.uc.ShareByLink(ctx, f.store.CompanyID, dto.ShareByLinkRequest{InvoiceIDs: []string{id}, ExpiresInDays: &days})
	require.NoError(t, err)
	require.Len(t, out, 1)
	link := out[0]
	assert.Equal(t, "active", link.Status)
	assert.False(t, link.Protected)
	assert.Regexp(t, `^https://app\.invoiceflow\.test/shared/[0-9a-f-]{36}$`, link.Link)
	require.NotNil(t, link.ExpiresAt)
	assert.Equal(t, fixedNow.AddDate(0, 0, 7), link.ExpiresAt.UTC())
	token := link.Link[len("https://app.invoiceflow.test/shared/"):]

	view, err := f.uc.OpenLink(ctx, token, "")
	require.NoError(t, err)
	assert.Equal(t, "Acme Studio", view.CompanyName)
	assert.Equal(t, int64(1001), view.Invoice.InvoiceNumber)
	assert.Len(t, view.Invoice.Items, 1)
	_, err = f.uc.OpenLink(ctx, token, "")
	require.NoError(t, err)

	stats, err := f.uc.Stats(ctx, f.store.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LinkShares)
	assert.Equal(t, 2, stats.TotalViews)

	_, _, err = f.uc.LinkPDF(ctx, token, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	*f.clock = fixedNow.AddDate(0, 0, 7)
	_, err = f.uc.OpenLink(ctx, token, "")
	assert.ErrorIs(t, err, domain.ErrExpired)

	hist, err := f.uc.History(ctx, f.store.CompanyID, "link")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "expired", hist[0].Status)

	_, err = f.uc.OpenLink(ctx, "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShareByLink_ConPasswordYDescarga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.invoice(t, "Globex", "100")

	out, err := f.uc.ShareByLink(ctx, f.store.CompanyID, dto.ShareByLinkRequest{
		InvoiceIDs: []string{id}, Password: "s3creta", AllowDownload: true,
	})
	require.NoError(t, err)
	assert.True(t, out[0].Protected)
	assert.Equal(t, fixedNow.AddDate(0, 0, sharing.DefaultLinkDays), out[0].ExpiresAt.UTC())
	token := out[0].Link[len("https://app.invoiceflow.test/shared/"):]

	_, err = f.uc.OpenLink(ctx, token, "otra")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.uc.OpenLink(ctx, token, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	view, err := f.uc.OpenLink(ctx, token, "s3creta")
	require.NoError(t, err)
	assert.True(t, view.AllowDownload)

	pdf, name, err := f.uc.LinkPDF(ctx, token, "s3creta")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "factura_"+id+".pdf", name)
	require.Len(t, f.pdf.calls, 1)
	assert.Equal(t, id+"|"+out[0].Link, f.pdf.calls[0], "el PDF lleva el enlace para el QR")
}

func TestShareByLink_DiasInvalidos(t *testing.T) {
	f := newFixture(t)
	id := f.invoice(t, "Globex", "100")
	for _, days := range []int{0, -3} {
		days := days
		_, err := f.uc.ShareByLink(context.Background(), f.store.CompanyID, dto.ShareByLinkRequest{InvoiceIDs: []string{id}, ExpiresInDays: &days})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestShareWithTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.invoice(t, "Globex", "100")
	b := f.invoice(t, "Initech", "200")

	out, err := f.uc.ShareWithTeam(ctx, f.store.CompanyID, dto.ShareWithTeamRequest{
		InvoiceIDs: []string{a, b},
		Emails:     []string{"ana@acme.test"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, r := range out {
		assert.Equal(t, "invited", r.Status)
		assert.Equal(t, "view", r.Permissions)
		assert.Equal(t, "collaboration", r.Method)
	}
	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, "Acme Studio shared invoice #1001 with you", f.mailer.sent[0].Subject)

	_, err = f.uc.ShareWithTeam(ctx, f.store.CompanyID, dto.ShareWithTeamRequest{InvoiceIDs: []string{a}, Emails: []string{"ana@acme.test"}, Permissions: "admin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// El aviso falla pero la invitación queda.
	f.mailer.fail["luis@acme.test"] = true
	out, err = f.uc.ShareWithTeam(ctx, f.store.CompanyID, dto.ShareWithTeamRequest{InvoiceIDs: []string{a}, Emails: []string{"luis@acme.test"}, Permissions: "edit"})
	require.NoError(t, err)
	assert.Equal(t, "edit", out[0].Permissions)

	stats, err := f.uc.Stats(ctx, f.store.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalShares)
	assert.Equal(t, 3, stats.CollaborationShares)
}

func TestHistory_MetodoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.History(context.Background(), f.store.CompanyID, "fax")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := f.uc.History(context.Background(), f.store.CompanyID, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTemplateList(t *testing.T) {
	f := newFixture(t)
	list := f.uc.TemplateList()
	require.Len(t, list, 3)
	assert.Equal(t, sharing.TemplateProfessional, list[0].Key)
}
