package invoicing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DraftClient datos del cliente en un borrador.
type DraftClient struct {
	Name    string
	Email   string
	Address string
}

// Draft factura en edición. Siempre tiene al menos una línea.
type Draft struct {
	Client         DraftClient
	Items          []LineItem
	DueDate        *time.Time
	Notes          string
	TaxRatePercent decimal.Decimal
}

// NewDraft crea un borrador con una línea por defecto.
func NewDraft() *Draft {
	return &Draft{Items: []LineItem{NewLineItem()}}
}

// AddItem agrega una línea por defecto al final.
func (d *Draft) AddItem() {
	d.Items = append(d.Items, NewLineItem())
}

// RemoveItem elimina la línea i. No hace nada si es la última o si i está fuera de rango.
func (d *Draft) RemoveItem(i int) bool {
	if len(d.Items) <= 1 || i < 0 || i >= len(d.Items) {
		return false
	}
	d.Items = append(d.Items[:i:i], d.Items[i+1:]...)
	return true
}

// Totals deriva subtotal, impuesto y total del borrador.
func (d *Draft) Totals() Totals {
	return Compute(d.Items, d.TaxRatePercent)
}
