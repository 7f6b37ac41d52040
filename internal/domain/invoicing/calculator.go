// Package invoicing contiene la aritmética de facturas (servicio de dominio puro):
// totales por línea, subtotal, impuesto, total y el estado de pago derivado.
//
// Ninguna función redondea: el redondeo a 2 decimales es un asunto de presentación
// (ver pkg/money). Tampoco se validan rangos; la validación la hace la capa de aplicación.
package invoicing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineItem una línea facturable (descripción, cantidad, precio unitario).
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// NewLineItem devuelve la línea por defecto de un borrador: cantidad 1, precio 0.
func NewLineItem() LineItem {
	return LineItem{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.Zero}
}

// LineTotal = cantidad * precio unitario.
func LineTotal(item LineItem) decimal.Decimal {
	return item.Quantity.Mul(item.UnitPrice)
}

// Subtotal suma LineTotal de todas las líneas. Lista vacía → 0.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineTotal(item))
	}
	return sum
}

// Tax = subtotal * (taxRatePercent / 100). Acepta tasas fuera de [0, 100].
func Tax(subtotal, taxRatePercent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRatePercent).Div(hundred)
}

// Total = Subtotal(items) + Tax(Subtotal(items), taxRatePercent).
func Total(items []LineItem, taxRatePercent decimal.Decimal) decimal.Decimal {
	subtotal := Subtotal(items)
	return subtotal.Add(Tax(subtotal, taxRatePercent))
}

// ValidTaxRate indica si la tasa está en [0, 100]. Los casos de uso rechazan el resto.
func ValidTaxRate(taxRatePercent decimal.Decimal) bool {
	return !taxRatePercent.IsNegative() && taxRatePercent.LessThanOrEqual(hundred)
}

// Outstanding saldo pendiente (total - pagado), nunca negativo.
func Outstanding(total, amountPaid decimal.Decimal) decimal.Decimal {
	rest := total.Sub(amountPaid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Totals cifras derivadas de un borrador.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Compute calcula subtotal, impuesto y total en una sola pasada.
func Compute(items []LineItem, taxRatePercent decimal.Decimal) Totals {
	subtotal := Subtotal(items)
	tax := Tax(subtotal, taxRatePercent)
	return Totals{Subtotal: subtotal, TaxAmount: tax, Total: subtotal.Add(tax)}
}
