package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/jhoicas/InvoiceFlow-api/pkg/money"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"7500":       "$7,500.00",
		"0":          "$0.00",
		"108.217525": "$108.22",
		"8.247525":   "$8.25",
		"-12.3":      "-$12.30",
		"1234567.8":  "$1,234,567.80",
		"-0.001":     "$0.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, money.Format(decimal.RequireFromString(in)), in)
	}
}

func TestFormatter_Espanol(t *testing.T) {
	f := money.New(language.Spanish, "$")
	assert.Equal(t, "$1.234.567,80", f.Format(decimal.RequireFromString("1234567.8")))
}

// Montos fuera del rango exacto de float64 conservan todos los centavos.
func TestFormat_MontosGrandes(t *testing.T) {
	assert.Equal(t, "$12,345,678,901,234,567.89", money.Format(decimal.RequireFromString("12345678901234567.89")))
	assert.Equal(t, "$123,456,789,012,345,678,901.50", money.Format(decimal.RequireFromString("123456789012345678901.5")))
	assert.Equal(t, "-$9,007,199,254,740,993.01", money.Format(decimal.RequireFromString("-9007199254740993.01")))

	es := money.New(language.Spanish, "$")
	assert.Equal(t, "$123.456.789.012.345.678.901,50", es.Format(decimal.RequireFromString("123456789012345678901.5")))
}
