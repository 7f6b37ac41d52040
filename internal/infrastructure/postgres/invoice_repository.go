package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, invoice_number, COALESCE(client_id, ''), client_name, client_email,
	client_address, subtotal, tax_rate, tax_amount, amount, amount_paid, due_date, description, notes,
	status, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.InvoiceNumber, &inv.ClientID, &inv.ClientName, &inv.ClientEmail,
		&inv.ClientAddress, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Amount, &inv.AmountPaid, &inv.DueDate,
		&inv.Description, &inv.Notes, &status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Status = invoicing.Status(status)
	return &inv, nil
}

// Create persiste la cabecera de la factura. Un número repetido en la empresa devuelve ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (id, company_id, invoice_number, client_id, client_name, client_email, client_address,
			subtotal, tax_rate, tax_amount, amount, amount_paid, due_date, description, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		inv.ID, inv.CompanyID, inv.InvoiceNumber, nullIfEmpty(inv.ClientID), inv.ClientName, inv.ClientEmail,
		inv.ClientAddress, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Amount, inv.AmountPaid, inv.DueDate,
		inv.Description, inv.Notes, string(inv.Status), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number %d: %w", inv.InvoiceNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItems persiste las líneas de detalle.
func (r *InvoiceRepo) CreateItems(ctx context.Context, items []*entity.InvoiceItem) error {
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_items (id, invoice_id, position, description, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.InvoiceID, it.Position, it.Description, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

// ReplaceItems borra las líneas actuales e inserta las nuevas.
func (r *InvoiceRepo) ReplaceItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return r.CreateItems(ctx, items)
}

// Update actualiza todos los campos editables de la factura.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		UPDATE invoices SET client_id = $3, client_name = $4, client_email = $5, client_address = $6,
			subtotal = $7, tax_rate = $8, tax_amount = $9, amount = $10, amount_paid = $11, due_date = $12,
			description = $13, notes = $14, status = $15, updated_at = $16
		WHERE company_id = $1 AND id = $2`,
		inv.CompanyID, inv.ID, nullIfEmpty(inv.ClientID), inv.ClientName, inv.ClientEmail, inv.ClientAddress,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Amount, inv.AmountPaid, inv.DueDate,
		inv.Description, inv.Notes, string(inv.Status), inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// UpdatePayment actualiza amount_paid y status.
func (r *InvoiceRepo) UpdatePayment(ctx context.Context, companyID, id string, amountPaid decimal.Decimal, status invoicing.Status) error {
	_, err := r.q.Exec(ctx, `
		UPDATE invoices SET amount_paid = $3, status = $4, updated_at = now()
		WHERE company_id = $1 AND id = $2`,
		companyID, id, amountPaid, string(status),
	)
	if err != nil {
		return fmt.Errorf("update invoice payment: %w", err)
	}
	return nil
}

// GetByID obtiene una factura de la empresa. Retorna (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByIDForUpdate toma el lock de fila: otro pago sobre la misma factura espera al commit y, en
// ReadCommitted, su suma posterior ya ve el pago confirmado.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock invoice: %w", err)
	}
	return inv, nil
}

// GetItems devuelve las líneas de la factura en orden.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, position, description, quantity, unit_price
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.Description, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List lista facturas de la empresa, de la más reciente a la más antigua.
func (r *InvoiceRepo) List(ctx context.Context, companyID string, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE company_id = $1`
	args := []any{companyID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.ClientID != "" {
		args = append(args, f.ClientID)
		query += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	if strings.TrimSpace(f.Search) != "" {
		args = append(args, likePattern(f.Search))
		n := len(args)
		query += fmt.Sprintf(` AND (client_name ILIKE $%d OR invoice_number::text ILIKE $%d)`, n, n)
	}
	query += ` ORDER BY invoice_number DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Delete elimina la factura; líneas, pagos y envíos caen por ON DELETE CASCADE.
func (r *InvoiceRepo) Delete(ctx context.Context, companyID, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// NextNumber siguiente consecutivo de la empresa. La unicidad final la garantiza
// uq_invoices_company_number; el caller reintenta ante ErrDuplicate.
func (r *InvoiceRepo) NextNumber(ctx context.Context, companyID string) (int64, error) {
	var next int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(invoice_number), $2) + 1 FROM invoices WHERE company_id = $1`,
		companyID, entity.FirstInvoiceNumber-1,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return next, nil
}
