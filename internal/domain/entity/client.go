package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un cliente.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client representa un cliente de la empresa.
type Client struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
	Phone     string
	Company   string // razón social del cliente (texto libre)
	Address   string
	Notes     string
	Status    string // ver ClientStatus*
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientTotals agregados derivados (no persistidos) de las facturas del cliente.
type ClientTotals struct {
	TotalInvoices int
	TotalAmount   decimal.Decimal
}
