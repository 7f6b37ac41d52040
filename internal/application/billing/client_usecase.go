package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

// ClientUseCase casos de uso para clientes.
type ClientUseCase struct {
	repo     repository.ClientRepository
	invoices repository.InvoiceRepository
	now      func() time.Time
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, invoices repository.InvoiceRepository, opts ...Option) *ClientUseCase {
	o := newOptions(opts)
	return &ClientUseCase{repo: repo, invoices: invoices, now: o.now}
}

func validClientStatus(s string) bool {
	return s == entity.ClientStatusActive || s == entity.ClientStatusInactive
}

// Create crea un nuevo cliente. Nombre y email son obligatorios.
func (uc *ClientUseCase) Create(ctx context.Context, companyID string, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	name, email := strings.TrimSpace(in.Name), strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: nombre y email son obligatorios", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = entity.ClientStatusActive
	}
	if !validClientStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	now := uc.now()
	c := &entity.Client{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		Email:     email,
		Phone:     in.Phone,
		Company:   in.Company,
		Address:   in.Address,
		Notes:     in.Notes,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := toClientResponse(c, entity.ClientTotals{TotalAmount: decimal.Zero})
	return &resp, nil
}

// Get obtiene un cliente con sus totales.
func (uc *ClientUseCase) Get(ctx context.Context, companyID, id string) (*dto.ClientResponse, error) {
	c, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	totals, err := uc.totals(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := toClientResponse(c, totalsFor(c, totals))
	return &resp, nil
}

// Update aplica los campos presentes en in.
func (uc *ClientUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		if strings.TrimSpace(*in.Email) == "" {
			return nil, fmt.Errorf("%w: el email es obligatorio", domain.ErrInvalidInput)
		}
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Company != nil {
		c.Company = *in.Company
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	if in.Status != nil {
		if !validClientStatus(*in.Status) {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *in.Status)
		}
		c.Status = *in.Status
	}
	c.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return uc.Get(ctx, companyID, id)
}

// Delete elimina un cliente.
func (uc *ClientUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, companyID, id)
}

// List lista clientes con búsqueda (nombre, email, empresa, teléfono) y filtro de estado.
func (uc *ClientUseCase) List(ctx context.Context, companyID string, in dto.ListClientsRequest) (*dto.ClientListResponse, error) {
	in.DefaultPage()
	if in.Status != "" && !validClientStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	list, err := uc.repo.List(ctx, companyID, repository.ClientFilter{
		Search: in.Search, Status: in.Status, Limit: in.Limit, Offset: in.Offset,
	})
	if err != nil {
		return nil, err
	}
	totals, err := uc.totals(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		items = append(items, toClientResponse(c, totalsFor(c, totals)))
	}
	return &dto.ClientListResponse{
		Items: items,
		Page:  in.Page(len(items)),
	}, nil
}

// Stats total de clientes, activos, facturación total y valor promedio por factura.
func (uc *ClientUseCase) Stats(ctx context.Context, companyID string) (*dto.ClientStatsResponse, error) {
	clients, err := uc.repo.List(ctx, companyID, repository.ClientFilter{})
	if err != nil {
		return nil, err
	}
	totals, err := uc.totals(ctx, companyID)
	if err != nil {
		return nil, err
	}
	stats := &dto.ClientStatsResponse{TotalClients: len(clients), TotalRevenue: decimal.Zero, AverageInvoice: decimal.Zero}
	invoiceCount := 0
	for _, c := range clients {
		if c.Status == entity.ClientStatusActive {
			stats.ActiveClients++
		}
		t := totalsFor(c, totals)
		stats.TotalRevenue = stats.TotalRevenue.Add(t.TotalAmount)
		invoiceCount += t.TotalInvoices
	}
	if invoiceCount > 0 {
		stats.AverageInvoice = stats.TotalRevenue.Div(decimal.NewFromInt(int64(invoiceCount))).Round(2)
	}
	return stats, nil
}

// clientTotals agrega facturas por client_id y por nombre en minúsculas (facturas sin cliente enlazado).
type clientTotals struct {
	byID   map[string]entity.ClientTotals
	byName map[string]entity.ClientTotals
}

func (uc *ClientUseCase) totals(ctx context.Context, companyID string) (clientTotals, error) {
	invoices, err := uc.invoices.List(ctx, companyID, repository.InvoiceFilter{})
	if err != nil {
		return clientTotals{}, err
	}
	t := clientTotals{byID: map[string]entity.ClientTotals{}, byName: map[string]entity.ClientTotals{}}
	add := func(m map[string]entity.ClientTotals, key string, amount decimal.Decimal) {
		cur := m[key]
		cur.TotalInvoices++
		cur.TotalAmount = cur.TotalAmount.Add(amount)
		m[key] = cur
	}
	for _, inv := range invoices {
		if inv.ClientID != "" {
			add(t.byID, inv.ClientID, inv.Amount)
			continue
		}
		add(t.byName, strings.ToLower(strings.TrimSpace(inv.ClientName)), inv.Amount)
	}
	return t, nil
}

func totalsFor(c *entity.Client, t clientTotals) entity.ClientTotals {
	byID := t.byID[c.ID]
	byName := t.byName[strings.ToLower(c.Name)]
	return entity.ClientTotals{
		TotalInvoices: byID.TotalInvoices + byName.TotalInvoices,
		TotalAmount:   byID.TotalAmount.Add(byName.TotalAmount),
	}
}

func toClientResponse(c *entity.Client, t entity.ClientTotals) dto.ClientResponse {
	return dto.ClientResponse{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Company:       c.Company,
		Address:       c.Address,
		Notes:         c.Notes,
		Status:        c.Status,
		TotalInvoices: t.TotalInvoices,
		TotalAmount:   t.TotalAmount,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (uc *ClientUseCase) load(ctx context.Context, companyID, id string) (*entity.Client, error) {
	c, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}
