package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo pagos en SQLite.
type PaymentRepo struct {
	q Querier
}

func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, company_id, invoice_id, amount, method, payment_date, reference, notes, recorded_at, updated_at`

func scanPayment(row scanner) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(&p.ID, &p.CompanyID, &p.InvoiceID, &p.Amount, &p.Method, &p.Date, &p.Reference, &p.Notes,
		&p.RecordedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Date, p.RecordedAt, p.UpdatedAt = p.Date.UTC(), p.RecordedAt.UTC(), p.UpdatedAt.UTC()
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.q.ExecContext(ctx, `INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.InvoiceID, p.Amount, p.Method, p.Date.UTC(), p.Reference, p.Notes,
		p.RecordedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE payments SET invoice_id = ?, amount = ?, method = ?, payment_date = ?, reference = ?, notes = ?,
			updated_at = ?
		WHERE company_id = ? AND id = ?`,
		p.InvoiceID, p.Amount, p.Method, p.Date.UTC(), p.Reference, p.Notes, p.UpdatedAt.UTC(), p.CompanyID, p.ID)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM payments WHERE company_id = ? AND id = ?`, companyID, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE company_id = ? AND id = ?`, companyID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE invoice_id = ?
		ORDER BY payment_date, recorded_at`, invoiceID)
}

func (r *PaymentRepo) List(ctx context.Context, companyID string, f repository.PaymentFilter) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE company_id = ?`
	args := []any{companyID}
	if f.InvoiceID != "" {
		query += ` AND invoice_id = ?`
		args = append(args, f.InvoiceID)
	}
	if f.Method != "" {
		query += ` AND method = ?`
		args = append(args, f.Method)
	}
	query += ` ORDER BY payment_date DESC, recorded_at DESC`
	return r.list(ctx, query, args...)
}

func (r *PaymentRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Payment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
