package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

var _ repository.ShareRepository = (*ShareRepo)(nil)

// ShareRepo implementación de ShareRepository.
type ShareRepo struct {
	q Querier
}

// NewShareRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShareRepository(q Querier) *ShareRepo {
	return &ShareRepo{q: q}
}

const shareColumns = `id, company_id, invoice_id, invoice_number, method, recipient, status, subject, message,
	attach_pdf, scheduled_at, sent_at, COALESCE(token, ''), link, password_hash, expires_at, allow_download,
	permissions, clicks, created_at, updated_at`

func scanShare(row pgx.Row) (*entity.ShareRecord, error) {
	var s entity.ShareRecord
	err := row.Scan(&s.ID, &s.CompanyID, &s.InvoiceID, &s.InvoiceNumber, &s.Method, &s.Recipient, &s.Status,
		&s.Subject, &s.Message, &s.AttachPDF, &s.ScheduledAt, &s.SentAt, &s.Token, &s.Link, &s.PasswordHash,
		&s.ExpiresAt, &s.AllowDownload, &s.Permissions, &s.Clicks, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un envío.
func (r *ShareRepo) Create(ctx context.Context, s *entity.ShareRecord) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO share_records (id, company_id, invoice_id, invoice_number, method, recipient, status, subject,
			message, attach_pdf, scheduled_at, sent_at, token, link, password_hash, expires_at, allow_download,
			permissions, clicks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		s.ID, s.CompanyID, s.InvoiceID, s.InvoiceNumber, s.Method, s.Recipient, s.Status, s.Subject,
		s.Message, s.AttachPDF, s.ScheduledAt, s.SentAt, nullIfEmpty(s.Token), s.Link, s.PasswordHash, s.ExpiresAt,
		s.AllowDownload, s.Permissions, s.Clicks, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert share record: %w", err)
	}
	return nil
}

// Update actualiza estado, fechas y contadores del envío.
func (r *ShareRepo) Update(ctx context.Context, s *entity.ShareRecord) error {
	_, err := r.q.Exec(ctx, `
		UPDATE share_records SET status = $2, sent_at = $3, scheduled_at = $4, expires_at = $5, clicks = $6,
			updated_at = $7
		WHERE id = $1`,
		s.ID, s.Status, s.SentAt, s.ScheduledAt, s.ExpiresAt, s.Clicks, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update share record: %w", err)
	}
	return nil
}

// Transition es la reserva de un envío: de dos workers que ven el mismo registro programado solo
// uno cambia la fila.
func (r *ShareRepo) Transition(ctx context.Context, id, from, to string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE share_records SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, from, to, at)
	if err != nil {
		return fmt.Errorf("transition share record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// GetByToken obtiene un enlace compartido. Retorna (nil, nil) si no existe.
func (r *ShareRepo) GetByToken(ctx context.Context, token string) (*entity.ShareRecord, error) {
	s, err := scanShare(r.q.QueryRow(ctx, `SELECT `+shareColumns+` FROM share_records WHERE token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get share by token: %w", err)
	}
	return s, nil
}

// List historial de la empresa, del más reciente al más antiguo.
func (r *ShareRepo) List(ctx context.Context, companyID, method string) ([]*entity.ShareRecord, error) {
	return r.list(ctx, `SELECT `+shareColumns+` FROM share_records
		WHERE company_id = $1 AND ($2 = '' OR method = $2)
		ORDER BY created_at DESC`, companyID, method)
}

// ListScheduled correos programados de todas las empresas.
func (r *ShareRepo) ListScheduled(ctx context.Context) ([]*entity.ShareRecord, error) {
	return r.list(ctx, `SELECT `+shareColumns+` FROM share_records
		WHERE status = $1 ORDER BY scheduled_at`, entity.ShareStatusScheduled)
}

// IncrementClicks suma una vista de forma atómica.
func (r *ShareRepo) IncrementClicks(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE share_records SET clicks = clicks + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	return nil
}

func (r *ShareRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ShareRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list share records: %w", err)
	}
	defer rows.Close()
	var list []*entity.ShareRecord
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share record: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
