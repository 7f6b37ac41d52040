package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/InvoiceFlow-api/pkg/jwt"
)

// run ejecuta la CLI con args y devuelve stdout y stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// sqliteEnv apunta la configuración a una base SQLite temporal.
func sqliteEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestNextDates(t *testing.T) {
	dates, unknown, err := nextDates("2024-01-31", "monthly", "2024-01-31", 3)
	require.NoError(t, err)
	assert.False(t, unknown)
	assert.Equal(t, []string{"2024-02-29", "2024-03-29", "2024-04-29"}, dates)

	dates, unknown, err = nextDates("2025-06-01", "weekly", "2024-01-01", 1)
	require.NoError(t, err)
	assert.False(t, unknown)
	assert.Equal(t, []string{"2025-06-01"}, dates)

	_, _, err = nextDates("31/01/2024", "monthly", "", 1)
	assert.Error(t, err)
}

func TestNextDates_TopeDeCount(t *testing.T) {
	dates, _, err := nextDates("2024-01-01", "daily", "2024-01-01", maxScheduleCount)
	require.NoError(t, err)
	assert.Len(t, dates, maxScheduleCount)

	_, _, err = nextDates("2024-01-01", "daily", "2024-01-01", maxScheduleCount+1)
	assert.ErrorContains(t, err, "--count")

	_, _, err = run(t, "schedule", "next", "--start", "2024-01-01", "--count", "1000000000000")
	assert.Error(t, err)
}

func TestScheduleNext_FrecuenciaDesconocida(t *testing.T) {
	out, _, err := run(t, "schedule", "next", "--start", "2024-01-01", "--frequency", "biweekly", "--now", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "frecuencia \"biweekly\" desconocida: se usa mensual\n2024-02-29\n", out)
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"2:2500", " 1 : 5000.50 "})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].Quantity.String())
	assert.Equal(t, "5000.5", items[1].UnitPrice.String())

	for _, bad := range [][]string{nil, {"2500"}, {"x:1"}, {"1:y"}} {
		_, err := parseItems(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestTotals(t *testing.T) {
	out, _, err := run(t, "totals", "--item", "3:19.99", "--item", "1:40", "--tax", "8.25")
	require.NoError(t, err)
	assert.Equal(t, "subtotal  $99.97\nimpuesto  $8.25 (8.25%)\ntotal     $108.22\n", out)

	_, _, err = run(t, "totals", "--item", "1:10", "--tax", "101")
	assert.Error(t, err)
}

func TestReadClientsCSV_Latin1(t *testing.T) {
	raw := []byte("Name, Email ,notes\nJos\xe9 P\xe9rez,jose@example.com,Cr\xe9dito 30 d\xedas\n,sin-nombre@example.com,\n")
	rows, err := readClientsCSV(bytes.NewReader(raw), "latin1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "José Pérez", rows[0].Name)
	assert.Equal(t, "jose@example.com", rows[0].Email)
	assert.Equal(t, "Crédito 30 días", rows[0].Notes)
	assert.Empty(t, rows[0].Phone)
	assert.Empty(t, rows[1].Name)
}

func TestReadClientsCSV_Errores(t *testing.T) {
	_, err := readClientsCSV(strings.NewReader("email\na@b.co\n"), "utf8")
	assert.Error(t, err)

	_, err = readClientsCSV(strings.NewReader("name\nx\n"), "ebcdic")
	assert.Error(t, err)
}

func TestClientsImport_SQLite(t *testing.T) {
	sqliteEnv(t)

	out, _, err := run(t, "company", "create", "--name", "Acme", "--email", "billing@acme.test")
	require.NoError(t, err)
	companyID := strings.TrimSpace(out)
	require.NotEmpty(t, companyID)

	csvPath := filepath.Join(t.TempDir(), "clientes.csv")
	writeFile(t, csvPath, "name,email,phone\nJohn Doe,john@example.com,555-0100\nJane Roe,jane@example.com,\n,nadie@example.com,\nSin Email,,\n")

	out, errOut, err := run(t, "clients", "import", "--file", csvPath, "--company", companyID)
	require.NoError(t, err)
	assert.Equal(t, "2 creados, 0 existentes, 2 inválidos\n", out)
	assert.Contains(t, errOut, "línea 4: nombre vacío")
	assert.Contains(t, errOut, "línea 5:")

	// Reimportar no duplica: el nombre se compara sin mayúsculas.
	writeFile(t, csvPath, "name,email\njohn doe,otro@example.com\n")
	out, _, err = run(t, "clients", "import", "--file", csvPath, "--company", companyID)
	require.NoError(t, err)
	assert.Equal(t, "0 creados, 1 existentes, 0 inválidos\n", out)
}

func TestCompanyListYRecurringRun_SQLite(t *testing.T) {
	sqliteEnv(t)

	_, _, err := run(t, "migrate")
	require.NoError(t, err)
	_, _, err = run(t, "company", "create", "--name", "Globex")
	require.NoError(t, err)

	out, _, err := run(t, "company", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NOMBRE")
	assert.Contains(t, out, "Globex")

	out, _, err = run(t, "recurring", "run", "--now", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "fecha 2024-03-15: 0 reglas evaluadas, 0 facturas generadas, 0 omitidas, 0 con error\n", out)

	_, _, err = run(t, "recurring", "run", "--now", "15-03-2024")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("JWT_ISSUER", "invoiceflow-cli")

	out, _, err := run(t, "token", "--company", "c-1", "--user", "u-1", "--role", jwt.RoleMember, "--minutes", "5")
	require.NoError(t, err)

	claims, err := jwt.Parse("cli-test-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "c-1", claims.CompanyID)
	assert.Equal(t, jwt.RoleMember, claims.Role)

	_, _, err = run(t, "token")
	assert.Error(t, err, "--company es obligatorio")

	_, _, err = run(t, "token", "--company", "c-1", "--role", "admin")
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
