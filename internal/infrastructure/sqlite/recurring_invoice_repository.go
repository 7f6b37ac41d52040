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
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

var _ repository.RecurringInvoiceRepository = (*RecurringInvoiceRepo)(nil)

// RecurringInvoiceRepo reglas recurrentes en SQLite.
type RecurringInvoiceRepo struct {
	q Querier
}

func NewRecurringInvoiceRepository(q Querier) *RecurringInvoiceRepo {
	return &RecurringInvoiceRepo{q: q}
}

const recurringColumns = `id, company_id, COALESCE(client_id, ''), client_name, description, amount, frequency,
	start_date, end_date, due_after_days, is_active, next_invoice_date, total_generated, last_generated_at,
	created_at, updated_at`

func scanRecurring(row scanner) (*entity.RecurringInvoice, error) {
	var r entity.RecurringInvoice
	var freq string
	err := row.Scan(&r.ID, &r.CompanyID, &r.ClientID, &r.ClientName, &r.Description, &r.Amount, &freq,
		&r.StartDate, &r.EndDate, &r.DueAfterDays, &r.IsActive, &r.NextInvoiceDate, &r.TotalGenerated,
		&r.LastGeneratedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Frequency = recurrence.Frequency(freq)
	r.StartDate, r.NextInvoiceDate = r.StartDate.UTC(), r.NextInvoiceDate.UTC()
	r.EndDate, r.LastGeneratedAt = utcPtr(r.EndDate), utcPtr(r.LastGeneratedAt)
	r.CreatedAt, r.UpdatedAt = r.CreatedAt.UTC(), r.UpdatedAt.UTC()
	return &r, nil
}

func (r *RecurringInvoiceRepo) Create(ctx context.Context, rule *entity.RecurringInvoice) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO recurring_invoices (id, company_id, client_id, client_name, description, amount, frequency,
			start_date, end_date, due_after_days, is_active, next_invoice_date, total_generated, last_generated_at,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.CompanyID, nullIfEmpty(rule.ClientID), rule.ClientName, rule.Description, rule.Amount,
		string(rule.Frequency), rule.StartDate.UTC(), utcPtr(rule.EndDate), rule.DueAfterDays, rule.IsActive,
		rule.NextInvoiceDate.UTC(), rule.TotalGenerated, utcPtr(rule.LastGeneratedAt),
		rule.CreatedAt.UTC(), rule.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert recurring invoice: %w", err)
	}
	return nil
}

func (r *RecurringInvoiceRepo) Update(ctx context.Context, rule *entity.RecurringInvoice) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE recurring_invoices SET client_id = ?, client_name = ?, description = ?, amount = ?,
			frequency = ?, start_date = ?, end_date = ?, due_after_days = ?, is_active = ?,
			next_invoice_date = ?, total_generated = ?, last_generated_at = ?, updated_at = ?
		WHERE company_id = ? AND id = ?`,
		nullIfEmpty(rule.ClientID), rule.ClientName, rule.Description, rule.Amount,
		string(rule.Frequency), rule.StartDate.UTC(), utcPtr(rule.EndDate), rule.DueAfterDays, rule.IsActive,
		rule.NextInvoiceDate.UTC(), rule.TotalGenerated, utcPtr(rule.LastGeneratedAt), rule.UpdatedAt.UTC(),
		rule.CompanyID, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("update recurring invoice: %w", err)
	}
	return nil
}

func (r *RecurringInvoiceRepo) Advance(ctx context.Context, rule *entity.RecurringInvoice, from time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE recurring_invoices SET total_generated = total_generated + 1, next_invoice_date = ?,
			last_generated_at = ?, updated_at = ?
		WHERE company_id = ? AND id = ? AND next_invoice_date = ?`,
		rule.NextInvoiceDate.UTC(), utcPtr(rule.LastGeneratedAt), rule.UpdatedAt.UTC(),
		rule.CompanyID, rule.ID, recurrence.DateOf(from),
	)
	if err != nil {
		return fmt.Errorf("advance recurring invoice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance recurring invoice: %w", err)
	}
	if n == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *RecurringInvoiceRepo) Delete(ctx context.Context, companyID, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM recurring_invoices WHERE company_id = ? AND id = ?`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete recurring invoice: %w", err)
	}
	return nil
}

func (r *RecurringInvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.RecurringInvoice, error) {
	rule, err := scanRecurring(r.q.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_invoices WHERE company_id = ? AND id = ?`, companyID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recurring invoice: %w", err)
	}
	return rule, nil
}

func (r *RecurringInvoiceRepo) List(ctx context.Context, companyID string) ([]*entity.RecurringInvoice, error) {
	return r.list(ctx, `SELECT `+recurringColumns+` FROM recurring_invoices WHERE company_id = ?
		ORDER BY next_invoice_date, created_at`, companyID)
}

// ListActive con companyID vacío recorre todas las empresas (uso del worker).
func (r *RecurringInvoiceRepo) ListActive(ctx context.Context, companyID string) ([]*entity.RecurringInvoice, error) {
	return r.list(ctx, `SELECT `+recurringColumns+` FROM recurring_invoices
		WHERE is_active = 1 AND (?1 = '' OR company_id = ?1)
		ORDER BY next_invoice_date, created_at`, companyID)
}

func (r *RecurringInvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.RecurringInvoice, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.RecurringInvoice
	for rows.Next() {
		rule, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring invoice: %w", err)
		}
		list = append(list, rule)
	}
	return list, rows.Err()
}
