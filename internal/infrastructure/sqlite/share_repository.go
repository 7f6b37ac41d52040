package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

var _ repository.ShareRepository = (*ShareRepo)(nil)

// ShareRepo historial de envíos y enlaces en SQLite.
type ShareRepo struct {
	q Querier
}

func NewShareRepository(q Querier) *ShareRepo {
	return &ShareRepo{q: q}
}

const shareColumns = `id, company_id, invoice_id, invoice_number, method, recipient, status, subject, message,
	attach_pdf, scheduled_at, sent_at, COALESCE(token, ''), link, password_hash, expires_at, allow_download,
	permissions, clicks, created_at, updated_at`

func scanShare(row scanner) (*entity.ShareRecord, error) {
	var s entity.ShareRecord
	err := row.Scan(&s.ID, &s.CompanyID, &s.InvoiceID, &s.InvoiceNumber, &s.Method, &s.Recipient, &s.Status,
		&s.Subject, &s.Message, &s.AttachPDF, &s.ScheduledAt, &s.SentAt, &s.Token, &s.Link, &s.PasswordHash,
		&s.ExpiresAt, &s.AllowDownload, &s.Permissions, &s.Clicks, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.ScheduledAt, s.SentAt, s.ExpiresAt = utcPtr(s.ScheduledAt), utcPtr(s.SentAt), utcPtr(s.ExpiresAt)
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
	return &s, nil
}

func (r *ShareRepo) Create(ctx context.Context, s *entity.ShareRecord) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO share_records (id, company_id, invoice_id, invoice_number, method, recipient, status, subject,
			message, attach_pdf, scheduled_at, sent_at, token, link, password_hash, expires_at, allow_download,
			permissions, clicks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CompanyID, s.InvoiceID, s.InvoiceNumber, s.Method, s.Recipient, s.Status, s.Subject,
		s.Message, s.AttachPDF, utcPtr(s.ScheduledAt), utcPtr(s.SentAt), nullIfEmpty(s.Token), s.Link,
		s.PasswordHash, utcPtr(s.ExpiresAt), s.AllowDownload, s.Permissions, s.Clicks,
		s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert share record: %w", err)
	}
	return nil
}

func (r *ShareRepo) Update(ctx context.Context, s *entity.ShareRecord) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE share_records SET status = ?, sent_at = ?, scheduled_at = ?, expires_at = ?, clicks = ?, updated_at = ?
		WHERE id = ?`,
		s.Status, utcPtr(s.SentAt), utcPtr(s.ScheduledAt), utcPtr(s.ExpiresAt), s.Clicks, s.UpdatedAt.UTC(), s.ID)
	if err != nil {
		return fmt.Errorf("update share record: %w", err)
	}
	return nil
}

func (r *ShareRepo) Transition(ctx context.Context, id, from, to string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE share_records SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, at.UTC(), id, from)
	if err != nil {
		return fmt.Errorf("transition share record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition share record: %w", err)
	}
	if n == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *ShareRepo) GetByToken(ctx context.Context, token string) (*entity.ShareRecord, error) {
	s, err := scanShare(r.q.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM share_records WHERE token = ?`, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get share by token: %w", err)
	}
	return s, nil
}

func (r *ShareRepo) List(ctx context.Context, companyID, method string) ([]*entity.ShareRecord, error) {
	return r.list(ctx, `SELECT `+shareColumns+` FROM share_records
		WHERE company_id = ?1 AND (?2 = '' OR method = ?2)
		ORDER BY created_at DESC`, companyID, method)
}

func (r *ShareRepo) ListScheduled(ctx context.Context) ([]*entity.ShareRecord, error) {
	return r.list(ctx, `SELECT `+shareColumns+` FROM share_records WHERE status = ? ORDER BY scheduled_at`,
		entity.ShareStatusScheduled)
}

func (r *ShareRepo) IncrementClicks(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `UPDATE share_records SET clicks = clicks + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	return nil
}

func (r *ShareRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ShareRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
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
