package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier abstrae pgxpool.Pool y pgx.Tx para que los repos funcionen dentro y fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation número de factura o token repetido; el caller lo traduce a domain.ErrDuplicate.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// nullIfEmpty convierte "" en NULL (columnas opcionales como client_id o token).
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// likePattern arma el patrón ILIKE para búsquedas de texto libre.
func likePattern(s string) string {
	return "%" + strings.TrimSpace(s) + "%"
}
