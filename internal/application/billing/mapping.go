package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
)

// FormatDate "YYYY-MM-DD" o "" para nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(recurrence.DateLayout)
}

// ParseOptionalDate interpreta "YYYY-MM-DD"; "" devuelve nil.
func ParseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := recurrence.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q, formato esperado YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return &d, nil
}

// ToInvoiceResponse convierte la factura (y opcionalmente líneas y pagos) a DTO.
func ToInvoiceResponse(inv *entity.Invoice, items []*entity.InvoiceItem, payments []*entity.Payment) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		ClientAddress: inv.ClientAddress,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Amount:        inv.Amount,
		AmountPaid:    inv.AmountPaid,
		Outstanding:   inv.Outstanding(),
		DueDate:       FormatDate(inv.DueDate),
		Description:   inv.Description,
		Notes:         inv.Notes,
		Status:        inv.Status.String(),
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   invoicing.LineTotal(it.LineItem()),
		})
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p, inv))
	}
	return resp
}

func toPaymentResponse(p *entity.Payment, inv *entity.Invoice) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:         p.ID,
		InvoiceID:  p.InvoiceID,
		Amount:     p.Amount,
		Method:     p.Method,
		Date:       p.Date.Format(recurrence.DateLayout),
		Reference:  p.Reference,
		Notes:      p.Notes,
		RecordedAt: p.RecordedAt,
	}
	if inv != nil {
		resp.InvoiceNumber = inv.InvoiceNumber
		resp.ClientName = inv.ClientName
	}
	return resp
}

// lineItems convierte las líneas del request al tipo de la calculadora validando cantidades y precios.
func lineItems(in []dto.InvoiceItemRequest) ([]invoicing.LineItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la factura necesita al menos una línea", domain.ErrInvalidInput)
	}
	out := make([]invoicing.LineItem, 0, len(in))
	for i, it := range in {
		if it.Quantity.IsNegative() || it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d con cantidad o precio negativo", domain.ErrInvalidInput, i+1)
		}
		out = append(out, invoicing.LineItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return out, nil
}

func toEntityItems(invoiceID string, items []invoicing.LineItem) []*entity.InvoiceItem {
	out := make([]*entity.InvoiceItem, 0, len(items))
	for i, it := range items {
		out = append(out, &entity.InvoiceItem{
			InvoiceID:   invoiceID,
			Position:    i + 1,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return out
}
