// Package sharing envía facturas por correo, genera enlaces públicos seguros e invita colaboradores.
package sharing

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

// DefaultLinkDays vigencia por defecto de un enlace compartido.
const DefaultLinkDays = 30

// Permisos de colaboración.
const (
	PermissionView    = "view"
	PermissionComment = "comment"
	PermissionEdit    = "edit"
)

// Config URL pública base para los enlaces (sin "/" final) y nombre de respaldo de la empresa.
type Config struct {
	BaseURL     string
	CompanyName string
}

// UseCase casos de uso de envío y compartición.
type UseCase struct {
	invoices  repository.InvoiceRepository
	companies repository.CompanyRepository
	shares    repository.ShareRepository
	pdf       PDFRenderer
	mailer    Mailer
	cfg       Config
	now       func() time.Time
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	invoices repository.InvoiceRepository,
	companies repository.CompanyRepository,
	shares repository.ShareRepository,
	pdf PDFRenderer,
	mailer Mailer,
	cfg Config,
	opts ...Option,
) *UseCase {
	o := newOptions(opts)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &UseCase{
		invoices: invoices, companies: companies, shares: shares, pdf: pdf, mailer: mailer,
		cfg: cfg, now: o.now, log: o.log,
	}
}

// ShareByEmail registra un envío por factura y destinatario. Con ScheduleAt futuro queda
// programado para el worker; si no, se guarda como sending, se envía y queda sent o failed.
func (uc *UseCase) ShareByEmail(ctx context.Context, companyID string, in dto.ShareByEmailRequest) ([]dto.ShareResponse, error) {
	recipients, err := cleanEmails(in.Recipients)
	if err != nil {
		return nil, err
	}
	tpl, ok := LookupTemplate(in.Template)
	if !ok {
		return nil, fmt.Errorf("%w: plantilla %q", domain.ErrInvalidInput, in.Template)
	}
	invoices, err := uc.loadInvoices(ctx, companyID, in.InvoiceIDs)
	if err != nil {
		return nil, err
	}
	companyName := uc.companyName(ctx, companyID)
	subject, message := tpl.Subject, tpl.Message
	if strings.TrimSpace(in.Subject) != "" {
		subject = in.Subject
	}
	if strings.TrimSpace(in.Message) != "" {
		message = in.Message
	}

	now := uc.now()
	scheduled := in.ScheduleAt != nil && in.ScheduleAt.After(now)
	var out []dto.ShareResponse
	for _, inv := range invoices {
		var attachments []Attachment
		if in.AttachPDF && !scheduled {
			if attachments, err = uc.attachment(ctx, inv); err != nil {
				return nil, err
			}
		}
		for _, to := range recipients {
			rec := &entity.ShareRecord{
				ID:            uuid.New().String(),
				CompanyID:     companyID,
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				Method:        entity.ShareMethodEmail,
				Recipient:     to,
				Subject:       Render(subject, inv, companyName),
				Message:       Render(message, inv, companyName),
				AttachPDF:     in.AttachPDF,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if scheduled {
				at := in.ScheduleAt.UTC()
				rec.Status, rec.ScheduledAt = entity.ShareStatusScheduled, &at
			} else {
				rec.Status = entity.ShareStatusSending
			}
			// El registro existe antes de que salga el correo: si el insert falla no se envía nada.
			if err := uc.shares.Create(ctx, rec); err != nil {
				return nil, err
			}
			if !scheduled {
				uc.deliver(ctx, rec, attachments, now)
				uc.saveOutcome(ctx, rec)
			}
			out = append(out, toResponse(rec))
		}
	}
	return out, nil
}

// deliver envía el correo y fija el estado. Un fallo de SMTP no aborta la operación.
func (uc *UseCase) deliver(ctx context.Context, rec *entity.ShareRecord, attachments []Attachment, now time.Time) {
	err := uc.mailer.Send(ctx, Email{To: []string{rec.Recipient}, Subject: rec.Subject, Body: rec.Message, Attachments: attachments})
	sentAt := now
	rec.SentAt, rec.UpdatedAt = &sentAt, now
	if err != nil {
		rec.Status = entity.ShareStatusFailed
		uc.log.Warn().Err(err).Str("invoice_id", rec.InvoiceID).Str("recipient", rec.Recipient).Msg("envío de factura fallido")
		return
	}
	rec.Status = entity.ShareStatusSent
}

// saveOutcome guarda sent/failed tras el envío. El correo ya salió, así que un error aquí se
// registra y no se propaga: reintentar la petición lo duplicaría.
func (uc *UseCase) saveOutcome(ctx context.Context, rec *entity.ShareRecord) {
	if err := uc.shares.Update(ctx, rec); err != nil {
		uc.log.Error().Err(err).Str("share_id", rec.ID).Str("status", rec.Status).Msg("guardar resultado del envío")
	}
}

func (uc *UseCase) attachment(ctx context.Context, inv *entity.Invoice) ([]Attachment, error) {
	content, filename, err := uc.pdf.DownloadInvoicePDF(ctx, inv.CompanyID, inv.ID, "")
	if err != nil {
		return nil, err
	}
	return []Attachment{{Filename: filename, Content: content}}, nil
}

// ShareByLink crea un enlace público por factura.
func (uc *UseCase) ShareByLink(ctx context.Context, companyID string, in dto.ShareByLinkRequest) ([]dto.ShareResponse, error) {
	days := DefaultLinkDays
	if in.ExpiresInDays != nil {
		days = *in.ExpiresInDays
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: expires_in_days debe ser mayor que cero", domain.ErrInvalidInput)
	}
	invoices, err := uc.loadInvoices(ctx, companyID, in.InvoiceIDs)
	if err != nil {
		return nil, err
	}
	var hash string
	if in.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(b)
	}

	now := uc.now()
	expires := now.AddDate(0, 0, days)
	out := make([]dto.ShareResponse, 0, len(invoices))
	for _, inv := range invoices {
		token := uuid.New().String()
		rec := &entity.ShareRecord{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			Method:        entity.ShareMethodLink,
			Status:        entity.ShareStatusActive,
			Token:         token,
			Link:          uc.cfg.BaseURL + "/shared/" + token,
			PasswordHash:  hash,
			ExpiresAt:     &expires,
			AllowDownload: in.AllowDownload,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uc.shares.Create(ctx, rec); err != nil {
			return nil, err
		}
		out = append(out, toResponse(rec))
	}
	return out, nil
}

// ShareWithTeam registra invitaciones de colaboración y avisa por correo a cada invitado.
func (uc *UseCase) ShareWithTeam(ctx context.Context, companyID string, in dto.ShareWithTeamRequest) ([]dto.ShareResponse, error) {
	emails, err := cleanEmails(in.Emails)
	if err != nil {
		return nil, err
	}
	perm := in.Permissions
	if perm == "" {
		perm = PermissionView
	}
	if perm != PermissionView && perm != PermissionComment && perm != PermissionEdit {
		return nil, fmt.Errorf("%w: permiso %q", domain.ErrInvalidInput, in.Permissions)
	}
	invoices, err := uc.loadInvoices(ctx, companyID, in.InvoiceIDs)
	if err != nil {
		return nil, err
	}
	companyName := uc.companyName(ctx, companyID)

	now := uc.now()
	var out []dto.ShareResponse
	for _, inv := range invoices {
		for _, to := range emails {
			rec := &entity.ShareRecord{
				ID:            uuid.New().String(),
				CompanyID:     companyID,
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				Method:        entity.ShareMethodCollaboration,
				Recipient:     to,
				Status:        entity.ShareStatusInvited,
				Subject:       Render("{companyName} shared invoice #{invoiceNumber} with you", inv, companyName),
				Message:       in.Message,
				Permissions:   perm,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			body := rec.Message
			if body == "" {
				body = Render("You have been invited to "+perm+" invoice #{invoiceNumber} for {clientName}.", inv, companyName)
			}
			if err := uc.shares.Create(ctx, rec); err != nil {
				return nil, err
			}
			if err := uc.mailer.Send(ctx, Email{To: []string{to}, Subject: rec.Subject, Body: body}); err != nil {
				uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Str("recipient", to).Msg("aviso de colaboración fallido")
			}
			out = append(out, toResponse(rec))
		}
	}
	return out, nil
}

// OpenLink acceso público por token. Valida vigencia y contraseña y cuenta la vista.
func (uc *UseCase) OpenLink(ctx context.Context, token, password string) (*dto.SharedInvoiceResponse, error) {
	rec, err := uc.resolveLink(ctx, token, password)
	if err != nil {
		return nil, err
	}
	if err := uc.shares.IncrementClicks(ctx, rec.ID); err != nil {
		return nil, err
	}
	inv, err := uc.invoices.GetByID(ctx, rec.CompanyID, rec.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoices.GetItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return &dto.SharedInvoiceResponse{
		CompanyName:   uc.companyName(ctx, rec.CompanyID),
		Invoice:       billing.ToInvoiceResponse(inv, items, nil),
		AllowDownload: rec.AllowDownload,
		ExpiresAt:     rec.ExpiresAt,
	}, nil
}

// LinkPDF PDF de la factura compartida si el enlace permite descarga.
func (uc *UseCase) LinkPDF(ctx context.Context, token, password string) ([]byte, string, error) {
	rec, err := uc.resolveLink(ctx, token, password)
	if err != nil {
		return nil, "", err
	}
	if !rec.AllowDownload {
		return nil, "", fmt.Errorf("%w: el enlace no permite descargar", domain.ErrForbidden)
	}
	return uc.pdf.DownloadInvoicePDF(ctx, rec.CompanyID, rec.InvoiceID, rec.Link)
}

func (uc *UseCase) resolveLink(ctx context.Context, token, password string) (*entity.ShareRecord, error) {
	rec, err := uc.shares.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Method != entity.ShareMethodLink {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	if rec.Status == entity.ShareStatusExpired || (rec.ExpiresAt != nil && !now.Before(*rec.ExpiresAt)) {
		if rec.Status != entity.ShareStatusExpired {
			rec.Status, rec.UpdatedAt = entity.ShareStatusExpired, now
			if err := uc.shares.Update(ctx, rec); err != nil {
				return nil, err
			}
		}
		return nil, domain.ErrExpired
	}
	if rec.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
			return nil, fmt.Errorf("%w: contraseña incorrecta", domain.ErrUnauthorized)
		}
	}
	return rec, nil
}

// History historial de la empresa; method vacío = todos.
func (uc *UseCase) History(ctx context.Context, companyID, method string) ([]dto.ShareResponse, error) {
	switch method {
	case "", entity.ShareMethodEmail, entity.ShareMethodLink, entity.ShareMethodCollaboration:
	default:
		return nil, fmt.Errorf("%w: método %q", domain.ErrInvalidInput, method)
	}
	list, err := uc.shares.List(ctx, companyID, method)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShareResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, toResponse(rec))
	}
	return out, nil
}

// Stats envíos por canal y vistas totales de enlaces.
func (uc *UseCase) Stats(ctx context.Context, companyID string) (*dto.ShareStatsResponse, error) {
	list, err := uc.shares.List(ctx, companyID, "")
	if err != nil {
		return nil, err
	}
	stats := &dto.ShareStatsResponse{TotalShares: len(list)}
	for _, rec := range list {
		switch rec.Method {
		case entity.ShareMethodEmail:
			stats.EmailShares++
		case entity.ShareMethodLink:
			stats.LinkShares++
		case entity.ShareMethodCollaboration:
			stats.CollaborationShares++
		}
		stats.TotalViews += rec.Clicks
	}
	return stats, nil
}

// TemplateList plantillas de correo para el formulario de envío.
func (uc *UseCase) TemplateList() []dto.EmailTemplateResponse {
	out := make([]dto.EmailTemplateResponse, 0, len(templates))
	for _, t := range Templates() {
		out = append(out, dto.EmailTemplateResponse{Key: t.Key, Name: t.Name, Subject: t.Subject, Message: t.Message})
	}
	return out
}

// DispatchScheduled envía los correos programados cuya hora ya llegó. Devuelve cuántos se enviaron.
// Cada registro se reserva (scheduled → sending) antes de enviarlo; los que otro worker ya
// reservó se saltan.
func (uc *UseCase) DispatchScheduled(ctx context.Context, now time.Time) (int, error) {
	pending, err := uc.shares.ListScheduled(ctx)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, rec := range pending {
		if rec.ScheduledAt != nil && rec.ScheduledAt.After(now) {
			continue
		}
		var attachments []Attachment
		if rec.AttachPDF {
			content, filename, err := uc.pdf.DownloadInvoicePDF(ctx, rec.CompanyID, rec.InvoiceID, "")
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return sent, err
			}
			if err == nil {
				attachments = []Attachment{{Filename: filename, Content: content}}
			}
		}
		err := uc.shares.Transition(ctx, rec.ID, entity.ShareStatusScheduled, entity.ShareStatusSending, now)
		if errors.Is(err, domain.ErrConflict) {
			uc.log.Debug().Str("share_id", rec.ID).Msg("envío programado ya reservado")
			continue
		}
		if err != nil {
			return sent, err
		}
		uc.deliver(ctx, rec, attachments, now)
		uc.saveOutcome(ctx, rec)
		if rec.Status == entity.ShareStatusSent {
			sent++
		}
	}
	return sent, nil
}

func (uc *UseCase) loadInvoices(ctx context.Context, companyID string, ids []string) ([]*entity.Invoice, error) {
	seen := map[string]bool{}
	var out []*entity.Invoice
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		inv, err := uc.invoices.GetByID(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
		}
		out = append(out, inv)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: selecciona al menos una factura", domain.ErrInvalidInput)
	}
	return out, nil
}

func (uc *UseCase) companyName(ctx context.Context, companyID string) string {
	c, err := uc.companies.GetByID(ctx, companyID)
	if err != nil || c == nil || c.Name == "" {
		return uc.cfg.CompanyName
	}
	return c.Name
}

// cleanEmails descarta vacíos y duplicados y valida el formato.
func cleanEmails(in []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" || seen[strings.ToLower(e)] {
			continue
		}
		if _, err := mail.ParseAddress(e); err != nil {
			return nil, fmt.Errorf("%w: email %q", domain.ErrInvalidInput, e)
		}
		seen[strings.ToLower(e)] = true
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: indica al menos un destinatario", domain.ErrInvalidInput)
	}
	return out, nil
}

func toResponse(rec *entity.ShareRecord) dto.ShareResponse {
	return dto.ShareResponse{
		ID:            rec.ID,
		InvoiceID:     rec.InvoiceID,
		InvoiceNumber: rec.InvoiceNumber,
		Method:        rec.Method,
		Recipient:     rec.Recipient,
		Status:        rec.Status,
		Subject:       rec.Subject,
		Link:          rec.Link,
		Protected:     rec.PasswordHash != "",
		AllowDownload: rec.AllowDownload,
		Permissions:   rec.Permissions,
		Clicks:        rec.Clicks,
		ScheduledAt:   rec.ScheduledAt,
		SentAt:        rec.SentAt,
		ExpiresAt:     rec.ExpiresAt,
		CreatedAt:     rec.CreatedAt,
	}
}
