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
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

var _ repository.RecurringInvoiceRepository = (*RecurringInvoiceRepo)(nil)

// RecurringInvoiceRepo implementación de RecurringInvoiceRepository (usable con pool o tx).
type RecurringInvoiceRepo struct {
	q Querier
}

// NewRecurringInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecurringInvoiceRepository(q Querier) *RecurringInvoiceRepo {
	return &RecurringInvoiceRepo{q: q}
}

const recurringColumns = `id, company_id, COALESCE(client_id, ''), client_name, description, amount, frequency,
	start_date, end_date, due_after_days, is_active, next_invoice_date, total_generated, last_generated_at,
	created_at, updated_at`

func scanRecurring(row pgx.Row) (*entity.RecurringInvoice, error) {
	var r entity.RecurringInvoice
	var freq string
	err := row.Scan(&r.ID, &r.CompanyID, &r.ClientID, &r.ClientName, &r.Description, &r.Amount, &freq,
		&r.StartDate, &r.EndDate, &r.DueAfterDays, &r.IsActive, &r.NextInvoiceDate, &r.TotalGenerated,
		&r.LastGeneratedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Frequency = recurrence.Frequency(freq)
	return &r, nil
}

// Create persiste una regla recurrente.
func (r *RecurringInvoiceRepo) Create(ctx context.Context, rule *entity.RecurringInvoice) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO recurring_invoices (id, company_id, client_id, client_name, description, amount, frequency,
			start_date, end_date, due_after_days, is_active, next_invoice_date, total_generated, last_generated_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		rule.ID, rule.CompanyID, nullIfEmpty(rule.ClientID), rule.ClientName, rule.Description, rule.Amount,
		string(rule.Frequency), rule.StartDate, rule.EndDate, rule.DueAfterDays, rule.IsActive, rule.NextInvoiceDate,
		rule.TotalGenerated, rule.LastGeneratedAt, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recurring invoice: %w", err)
	}
	return nil
}

// Update actualiza todos los campos de la regla.
func (r *RecurringInvoiceRepo) Update(ctx context.Context, rule *entity.RecurringInvoice) error {
	_, err := r.q.Exec(ctx, `
		UPDATE recurring_invoices SET client_id = $3, client_name = $4, description = $5, amount = $6,
			frequency = $7, start_date = $8, end_date = $9, due_after_days = $10, is_active = $11,
			next_invoice_date = $12, total_generated = $13, last_generated_at = $14, updated_at = $15
		WHERE company_id = $1 AND id = $2`,
		rule.CompanyID, rule.ID, nullIfEmpty(rule.ClientID), rule.ClientName, rule.Description, rule.Amount,
		string(rule.Frequency), rule.StartDate, rule.EndDate, rule.DueAfterDays, rule.IsActive,
		rule.NextInvoiceDate, rule.TotalGenerated, rule.LastGeneratedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update recurring invoice: %w", err)
	}
	return nil
}

// Advance avanza la regla con un UPDATE condicional: en ReadCommitted la segunda transacción espera el
// lock de la fila y, al reevaluar el WHERE, ya no la encuentra.
func (r *RecurringInvoiceRepo) Advance(ctx context.Context, rule *entity.RecurringInvoice, from time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE recurring_invoices SET total_generated = total_generated + 1, next_invoice_date = $3,
			last_generated_at = $4, updated_at = $5
		WHERE company_id = $1 AND id = $2 AND next_invoice_date = $6`,
		rule.CompanyID, rule.ID, rule.NextInvoiceDate, rule.LastGeneratedAt, rule.UpdatedAt, from,
	)
	if err != nil {
		return fmt.Errorf("advance recurring invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Delete elimina una regla. Las facturas ya generadas se conservan.
func (r *RecurringInvoiceRepo) Delete(ctx context.Context, companyID, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM recurring_invoices WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete recurring invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una regla de la empresa. Retorna (nil, nil) si no existe.
func (r *RecurringInvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.RecurringInvoice, error) {
	rule, err := scanRecurring(r.q.QueryRow(ctx,
		`SELECT `+recurringColumns+` FROM recurring_invoices WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recurring invoice: %w", err)
	}
	return rule, nil
}

// List reglas de la empresa ordenadas por próxima fecha.
func (r *RecurringInvoiceRepo) List(ctx context.Context, companyID string) ([]*entity.RecurringInvoice, error) {
	return r.list(ctx, `SELECT `+recurringColumns+` FROM recurring_invoices WHERE company_id = $1
		ORDER BY next_invoice_date, created_at`, companyID)
}

// ListActive reglas activas; companyID vacío = todas las empresas.
func (r *RecurringInvoiceRepo) ListActive(ctx context.Context, companyID string) ([]*entity.RecurringInvoice, error) {
	return r.list(ctx, `SELECT `+recurringColumns+` FROM recurring_invoices
		WHERE is_active AND ($1 = '' OR company_id = $1)
		ORDER BY next_invoice_date, created_at`, companyID)
}

func (r *RecurringInvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.RecurringInvoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
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
