package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, company_id, invoice_id, amount, method, payment_date, reference, notes, recorded_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(&p.ID, &p.CompanyID, &p.InvoiceID, &p.Amount, &p.Method, &p.Date, &p.Reference, &p.Notes,
		&p.RecordedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.CompanyID, p.InvoiceID, p.Amount, p.Method, p.Date, p.Reference, p.Notes, p.RecordedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// Update actualiza un pago (puede cambiar de factura).
func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		UPDATE payments SET invoice_id = $3, amount = $4, method = $5, payment_date = $6, reference = $7,
			notes = $8, updated_at = $9
		WHERE company_id = $1 AND id = $2`,
		p.CompanyID, p.ID, p.InvoiceID, p.Amount, p.Method, p.Date, p.Reference, p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// Delete elimina un pago.
func (r *PaymentRepo) Delete(ctx context.Context, companyID, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM payments WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago de la empresa. Retorna (nil, nil) si no existe.
func (r *PaymentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListByInvoice pagos de una factura en orden cronológico.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE invoice_id = $1
		ORDER BY payment_date, recorded_at`, invoiceID)
}

// List pagos de la empresa, del más reciente al más antiguo.
func (r *PaymentRepo) List(ctx context.Context, companyID string, f repository.PaymentFilter) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE company_id = $1`
	args := []any{companyID}
	if f.InvoiceID != "" {
		args = append(args, f.InvoiceID)
		query += fmt.Sprintf(` AND invoice_id = $%d`, len(args))
	}
	if f.Method != "" {
		args = append(args, f.Method)
		query += fmt.Sprintf(` AND method = $%d`, len(args))
	}
	query += ` ORDER BY payment_date DESC, recorded_at DESC`
	return r.list(ctx, query, args...)
}

func (r *PaymentRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, query, args...)
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
