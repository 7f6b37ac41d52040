package entity

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
)

// InvoiceItem representa una línea de detalle de una factura.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Position    int // orden dentro de la factura
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// LineItem convierte la línea persistida al tipo de la calculadora.
func (it *InvoiceItem) LineItem() invoicing.LineItem {
	return invoicing.LineItem{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
}

// LineItems convierte una lista de líneas persistidas.
func LineItems(items []*InvoiceItem) []invoicing.LineItem {
	out := make([]invoicing.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.LineItem())
	}
	return out
}
