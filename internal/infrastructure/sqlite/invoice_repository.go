package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas y líneas en SQLite.
type InvoiceRepo struct {
	q Querier
}

func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, invoice_number, COALESCE(client_id, ''), client_name, client_email,
	client_address, subtotal, tax_rate, tax_amount, amount, amount_paid, due_date, description, notes,
	status, created_at, updated_at`

func scanInvoice(row scanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.InvoiceNumber, &inv.ClientID, &inv.ClientName, &inv.ClientEmail,
		&inv.ClientAddress, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Amount, &inv.AmountPaid, &inv.DueDate,
		&inv.Description, &inv.Notes, &status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Status = invoicing.Status(status)
	inv.DueDate = utcPtr(inv.DueDate)
	inv.CreatedAt, inv.UpdatedAt = inv.CreatedAt.UTC(), inv.UpdatedAt.UTC()
	return &inv, nil
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invoices (id, company_id, invoice_number, client_id, client_name, client_email, client_address,
			subtotal, tax_rate, tax_amount, amount, amount_paid, due_date, description, notes, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.CompanyID, inv.InvoiceNumber, nullIfEmpty(inv.ClientID), inv.ClientName, inv.ClientEmail,
		inv.ClientAddress, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Amount, inv.AmountPaid, utcPtr(inv.DueDate),
		inv.Description, inv.Notes, string(inv.Status), inv.CreatedAt.UTC(), inv.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number %d: %w", inv.InvoiceNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) CreateItems(ctx context.Context, items []*entity.InvoiceItem) error {
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO invoice_items (id, invoice_id, position, description, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			it.ID, it.InvoiceID, it.Position, it.Description, it.Quantity, it.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

func (r *InvoiceRepo) ReplaceItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return r.CreateItems(ctx, items)
}

func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE invoices SET client_id = ?, client_name = ?, client_email = ?, client_address = ?,
			subtotal = ?, tax_rate = ?, tax_amount = ?, amount = ?, amount_paid = ?, due_date = ?,
			description = ?, notes = ?, status = ?, updated_at = ?
		WHERE company_id = ? AND id = ?`,
		nullIfEmpty(inv.ClientID), inv.ClientName, inv.ClientEmail, inv.ClientAddress,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Amount, inv.AmountPaid, utcPtr(inv.DueDate),
		inv.Description, inv.Notes, string(inv.Status), inv.UpdatedAt.UTC(), inv.CompanyID, inv.ID,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) UpdatePayment(ctx context.Context, companyID, id string, amountPaid decimal.Decimal, status invoicing.Status) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE invoices SET amount_paid = ?, status = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
		amountPaid, string(status), time.Now().UTC(), companyID, id)
	if err != nil {
		return fmt.Errorf("update invoice payment: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id = ? AND id = ?`, companyID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByIDForUpdate equivale a GetByID: la base usa una sola conexión y las transacciones ya se
// ejecutan de a una.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, invoice_id, position, description, quantity, unit_price
		FROM invoice_items WHERE invoice_id = ? ORDER BY position`, invoiceID)
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

func (r *InvoiceRepo) List(ctx context.Context, companyID string, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE company_id = ?`
	args := []any{companyID}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.ClientID != "" {
		query += ` AND client_id = ?`
		args = append(args, f.ClientID)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := likePattern(f.Search)
		query += ` AND (LOWER(client_name) LIKE ? OR CAST(invoice_number AS TEXT) LIKE ?)`
		args = append(args, p, p)
	}
	query += ` ORDER BY invoice_number DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
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

// Delete requiere _foreign_keys=on para que líneas, pagos y envíos caigan en cascada.
func (r *InvoiceRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM invoices WHERE company_id = ? AND id = ?`, companyID, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) NextNumber(ctx context.Context, companyID string) (int64, error) {
	var next int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(invoice_number), ?) + 1 FROM invoices WHERE company_id = ?`,
		entity.FirstInvoiceNumber-1, companyID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return next, nil
}
