package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemRequest línea de factura (descripción, cantidad, precio unitario).
type InvoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// ClientID es opcional: si va vacío se usa ClientName y se registra el cliente si no existe.
type CreateInvoiceRequest struct {
	ClientID      string               `json:"client_id,omitempty"`
	ClientName    string               `json:"client_name"`
	ClientEmail   string               `json:"client_email,omitempty"`
	ClientAddress string               `json:"client_address,omitempty"`
	Items         []InvoiceItemRequest `json:"items"`
	TaxRate       decimal.Decimal      `json:"tax_rate"`           // porcentaje 0–100
	DueDate       string               `json:"due_date,omitempty"` // YYYY-MM-DD
	Description   string               `json:"description,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	Status        string               `json:"status,omitempty"` // solo "draft" o vacío
}

// PreviewInvoiceRequest body para POST /api/invoices/preview (no persiste).
type PreviewInvoiceRequest struct {
	ClientName    string               `json:"client_name"`
	ClientEmail   string               `json:"client_email,omitempty"`
	ClientAddress string               `json:"client_address,omitempty"`
	Items         []InvoiceItemRequest `json:"items"`
	TaxRate       decimal.Decimal      `json:"tax_rate"`
	DueDate       string               `json:"due_date,omitempty"`
	Notes         string               `json:"notes,omitempty"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id (campos opcionales).
// Items nil = sin cambios; si se envía, reemplaza todas las líneas.
type UpdateInvoiceRequest struct {
	ClientID      *string              `json:"client_id,omitempty"`
	ClientName    *string              `json:"client_name,omitempty"`
	ClientEmail   *string              `json:"client_email,omitempty"`
	ClientAddress *string              `json:"client_address,omitempty"`
	Items         []InvoiceItemRequest `json:"items,omitempty"`
	TaxRate       *decimal.Decimal     `json:"tax_rate,omitempty"`
	DueDate       *string              `json:"due_date,omitempty"` // "" elimina la fecha
	Description   *string              `json:"description,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
	Status        *string              `json:"status,omitempty"`
}

// UpdateInvoiceStatusRequest body para PATCH /api/invoices/:id/status.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

// ListInvoicesRequest filtros de GET /api/invoices.
type ListInvoicesRequest struct {
	PageRequest
	Status   string `query:"status"`
	ClientID string `query:"client_id"`
	Search   string `query:"search"`
}

// InvoiceItemResponse línea de detalle en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceTotalsResponse totales calculados de un borrador.
type InvoiceTotalsResponse struct {
	Items     []InvoiceItemResponse `json:"items"`
	Subtotal  decimal.Decimal       `json:"subtotal"`
	TaxRate   decimal.Decimal       `json:"tax_rate"`
	TaxAmount decimal.Decimal       `json:"tax_amount"`
	Total     decimal.Decimal       `json:"total"`
}

// InvoiceResponse factura con detalle para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber int64                 `json:"invoice_number"`
	ClientID      string                `json:"client_id,omitempty"`
	ClientName    string                `json:"client_name"`
	ClientEmail   string                `json:"client_email,omitempty"`
	ClientAddress string                `json:"client_address,omitempty"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	Amount        decimal.Decimal       `json:"amount"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	Outstanding   decimal.Decimal       `json:"outstanding"`
	DueDate       string                `json:"due_date,omitempty"`
	Description   string                `json:"description,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Status        string                `json:"status"`
	Payments      []PaymentResponse     `json:"payments,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
