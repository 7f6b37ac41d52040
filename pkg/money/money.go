// Package money formatea montos para presentación (PDF, correos, CLI).
// El redondeo a 2 decimales ocurre solo aquí; los cálculos conservan la precisión completa.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter formatea montos según las convenciones de un idioma.
type Formatter struct {
	p       *message.Printer
	symbol  string
	group   string // separador de miles del idioma
	decimal string // separador decimal del idioma
}

// New crea un formatter para tag con el símbolo de moneda indicado.
func New(tag language.Tag, symbol string) *Formatter {
	p := message.NewPrinter(tag)
	f := &Formatter{p: p, symbol: symbol, group: ",", decimal: "."}
	// Los separadores se leen de muestras impresas por el propio idioma.
	if s := p.Sprint(number.Decimal(1234567)); strings.HasPrefix(s, "1") {
		if i := strings.Index(s, "2"); i > 1 {
			f.group = s[1:i]
		}
	}
	if s := p.Sprint(number.Decimal(1.5, number.Scale(1))); strings.HasPrefix(s, "1") && strings.HasSuffix(s, "5") && len(s) > 2 {
		f.decimal = s[1 : len(s)-1]
	}
	return f
}

var std = New(language.English, "$")

// Format formatea con el formatter por defecto (inglés, "$"): 7500 → "$7,500.00".
func Format(d decimal.Decimal) string { return std.Format(d) }

// Format devuelve el monto con separadores de miles y 2 decimales. Trabaja sobre el texto
// decimal exacto, sin pasar por float64.
func (f *Formatter) Format(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	return sign + f.symbol + f.integer(d, intPart) + f.decimal + frac
}

// integer agrupa la parte entera. Si cabe en int64 la imprime el idioma; si no, se agrupa de a
// tres dígitos con su separador.
func (f *Formatter) integer(d decimal.Decimal, digits string) string {
	if n := d.Truncate(0).BigInt(); n.IsInt64() {
		return f.p.Sprint(number.Decimal(n.Int64()))
	}
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(f.group)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
