package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

// maxNumberAttempts reintentos cuando dos altas concurrentes toman el mismo consecutivo.
const maxNumberAttempts = 3

// InvoiceUseCase casos de uso de facturas: vista previa, alta, edición, estado y baja.
type InvoiceUseCase struct {
	tx       BillingTxRunner
	invoices repository.InvoiceRepository
	payments repository.PaymentRepository
	clients  repository.ClientRepository
	now      func() time.Time
	log      zerolog.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	tx BillingTxRunner,
	invoices repository.InvoiceRepository,
	payments repository.PaymentRepository,
	clients repository.ClientRepository,
	opts ...Option,
) *InvoiceUseCase {
	o := newOptions(opts)
	return &InvoiceUseCase{tx: tx, invoices: invoices, payments: payments, clients: clients, now: o.now, log: o.log}
}

// Preview calcula los totales de un borrador sin persistir nada.
func (uc *InvoiceUseCase) Preview(in dto.PreviewInvoiceRequest) (*dto.InvoiceTotalsResponse, error) {
	items, err := lineItems(in.Items)
	if err != nil {
		return nil, err
	}
	if !invoicing.ValidTaxRate(in.TaxRate) {
		return nil, fmt.Errorf("%w: la tasa de impuesto debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	draft := invoicing.Draft{
		Client:         invoicing.DraftClient{Name: in.ClientName, Email: in.ClientEmail, Address: in.ClientAddress},
		Items:          items,
		Notes:          in.Notes,
		TaxRatePercent: in.TaxRate,
	}
	totals := draft.Totals()
	resp := &dto.InvoiceTotalsResponse{
		Subtotal:  totals.Subtotal,
		TaxRate:   in.TaxRate,
		TaxAmount: totals.TaxAmount,
		Total:     totals.Total,
	}
	for _, it := range draft.Items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   invoicing.LineTotal(it),
		})
	}
	return resp, nil
}

// Create valida, calcula totales, asigna consecutivo y persiste factura + líneas en una transacción.
func (uc *InvoiceUseCase) Create(ctx context.Context, companyID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	items, err := lineItems(in.Items)
	if err != nil {
		return nil, err
	}
	if !invoicing.ValidTaxRate(in.TaxRate) {
		return nil, fmt.Errorf("%w: la tasa de impuesto debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	dueDate, err := ParseOptionalDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	inv := &entity.Invoice{
		CompanyID:     companyID,
		ClientID:      in.ClientID,
		ClientName:    strings.TrimSpace(in.ClientName),
		ClientEmail:   strings.TrimSpace(in.ClientEmail),
		ClientAddress: in.ClientAddress,
		DueDate:       dueDate,
		Description:   in.Description,
		Notes:         in.Notes,
	}
	if inv.ClientID != "" {
		if err := uc.fillFromClient(ctx, inv); err != nil {
			return nil, err
		}
	}
	if inv.ClientName == "" {
		return nil, fmt.Errorf("%w: el nombre del cliente es obligatorio", domain.ErrInvalidInput)
	}

	totals := invoicing.Compute(items, in.TaxRate)
	inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Amount = totals.Subtotal, in.TaxRate, totals.TaxAmount, totals.Total
	inv.AmountPaid = decimal.Zero

	switch invoicing.Status(in.Status) {
	case "", invoicing.StatusPending:
		inv.Status = invoicing.DeriveStatus(inv.AmountPaid, inv.Amount)
	case invoicing.StatusDraft:
		inv.Status = invoicing.StatusDraft
	default:
		return nil, fmt.Errorf("%w: una factura nueva solo puede ser draft o pending", domain.ErrInvalidInput)
	}

	if inv.ClientID == "" {
		uc.ensureClient(ctx, inv)
	}

	now := uc.now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	if err := PersistInvoice(ctx, uc.tx, inv, items, nil); err != nil {
		return nil, err
	}
	stored, err := uc.invoices.GetItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, stored, nil)
	return &resp, nil
}

// PersistInvoice asigna el siguiente consecutivo y guarda cabecera + líneas dentro de una transacción.
// after (opcional) corre en la misma transacción. Si el número colisiona se reintenta completo.
func PersistInvoice(
	ctx context.Context,
	tx BillingTxRunner,
	inv *entity.Invoice,
	items []invoicing.LineItem,
	after func(repository.InvoiceRepository, repository.PaymentRepository, repository.RecurringInvoiceRepository) error,
) error {
	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		err = tx.RunBilling(ctx, func(invRepo repository.InvoiceRepository, payRepo repository.PaymentRepository, recRepo repository.RecurringInvoiceRepository) error {
			number, err := invRepo.NextNumber(ctx, inv.CompanyID)
			if err != nil {
				return err
			}
			inv.ID = uuid.New().String()
			inv.InvoiceNumber = number
			if err := invRepo.Create(ctx, inv); err != nil {
				return err
			}
			if err := invRepo.CreateItems(ctx, toEntityItems(inv.ID, items)); err != nil {
				return err
			}
			if after != nil {
				return after(invRepo, payRepo, recRepo)
			}
			return nil
		})
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
	}
	return err
}

func (uc *InvoiceUseCase) fillFromClient(ctx context.Context, inv *entity.Invoice) error {
	c, err := uc.clients.GetByID(ctx, inv.CompanyID, inv.ClientID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: el cliente %s no existe", domain.ErrInvalidInput, inv.ClientID)
	}
	if inv.ClientName == "" {
		inv.ClientName = c.Name
	}
	if inv.ClientEmail == "" {
		inv.ClientEmail = c.Email
	}
	if inv.ClientAddress == "" {
		inv.ClientAddress = c.Address
	}
	return nil
}

// ensureClient enlaza la factura con el cliente del mismo nombre o lo registra si es nuevo.
// Un fallo aquí no impide emitir la factura.
func (uc *InvoiceUseCase) ensureClient(ctx context.Context, inv *entity.Invoice) {
	existing, err := uc.clients.GetByName(ctx, inv.CompanyID, inv.ClientName)
	if err != nil {
		uc.log.Warn().Err(err).Str("client_name", inv.ClientName).Msg("buscar cliente por nombre")
		return
	}
	if existing != nil {
		inv.ClientID = existing.ID
		return
	}
	now := uc.now()
	c := &entity.Client{
		ID:        uuid.New().String(),
		CompanyID: inv.CompanyID,
		Name:      inv.ClientName,
		Email:     inv.ClientEmail,
		Address:   inv.ClientAddress,
		Status:    entity.ClientStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.clients.Create(ctx, c); err != nil {
		uc.log.Warn().Err(err).Str("client_name", inv.ClientName).Msg("registrar cliente nuevo desde factura")
		return
	}
	inv.ClientID = c.ID
	uc.log.Info().Str("client_id", c.ID).Str("client_name", c.Name).Msg("cliente registrado desde factura")
}

// Get devuelve la factura con sus líneas y pagos.
func (uc *InvoiceUseCase) Get(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.invoices.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.payments.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, items, payments)
	return &resp, nil
}

// List lista facturas con filtros y paginación (sin líneas).
func (uc *InvoiceUseCase) List(ctx context.Context, companyID string, in dto.ListInvoicesRequest) (*dto.InvoiceListResponse, error) {
	in.DefaultPage()
	status := invoicing.Status(in.Status)
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	list, err := uc.invoices.List(ctx, companyID, repository.InvoiceFilter{
		Status:   status,
		ClientID: in.ClientID,
		Search:   in.Search,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, ToInvoiceResponse(inv, nil, nil))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  in.Page(len(items)),
	}, nil
}

// Update aplica los campos presentes. Reemplazar líneas o tasa recalcula montos; un estado explícito
// gana, si no el estado de pago se vuelve a derivar (salvo draft y overdue, que son manuales).
func (uc *InvoiceUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if in.ClientID != nil {
		inv.ClientID = *in.ClientID
		if inv.ClientID != "" {
			c, err := uc.clients.GetByID(ctx, companyID, inv.ClientID)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, fmt.Errorf("%w: el cliente %s no existe", domain.ErrInvalidInput, inv.ClientID)
			}
		}
	}
	if in.ClientName != nil {
		if strings.TrimSpace(*in.ClientName) == "" {
			return nil, fmt.Errorf("%w: el nombre del cliente es obligatorio", domain.ErrInvalidInput)
		}
		inv.ClientName = strings.TrimSpace(*in.ClientName)
	}
	if in.ClientEmail != nil {
		inv.ClientEmail = strings.TrimSpace(*in.ClientEmail)
	}
	if in.ClientAddress != nil {
		inv.ClientAddress = *in.ClientAddress
	}
	if in.DueDate != nil {
		if inv.DueDate, err = ParseOptionalDate(*in.DueDate); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		inv.Description = *in.Description
	}
	if in.Notes != nil {
		inv.Notes = *in.Notes
	}

	var newItems []invoicing.LineItem
	amountChanged := false
	if in.Items != nil || in.TaxRate != nil {
		if in.Items != nil {
			if newItems, err = lineItems(in.Items); err != nil {
				return nil, err
			}
		} else {
			stored, err := uc.invoices.GetItems(ctx, id)
			if err != nil {
				return nil, err
			}
			newItems = entity.LineItems(stored)
		}
		rate := inv.TaxRate
		if in.TaxRate != nil {
			rate = *in.TaxRate
		}
		if !invoicing.ValidTaxRate(rate) {
			return nil, fmt.Errorf("%w: la tasa de impuesto debe estar entre 0 y 100", domain.ErrInvalidInput)
		}
		totals := invoicing.Compute(newItems, rate)
		amountChanged = !totals.Total.Equal(inv.Amount)
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Amount = totals.Subtotal, rate, totals.TaxAmount, totals.Total
	}

	switch {
	case in.Status != nil:
		s := invoicing.Status(*in.Status)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *in.Status)
		}
		inv.Status = s
	case amountChanged && inv.Status.IsPaymentDerived():
		inv.Status = invoicing.DeriveStatus(inv.AmountPaid, inv.Amount)
	}
	inv.UpdatedAt = uc.now()

	err = uc.tx.RunBilling(ctx, func(invRepo repository.InvoiceRepository, _ repository.PaymentRepository, _ repository.RecurringInvoiceRepository) error {
		if err := invRepo.Update(ctx, inv); err != nil {
			return err
		}
		if in.Items != nil {
			return invRepo.ReplaceItems(ctx, inv.ID, toEntityItems(inv.ID, newItems))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, companyID, id)
}

// UpdateStatus asigna un estado manualmente (p. ej. overdue o marcar como pagada).
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, companyID, id, status string) (*dto.InvoiceResponse, error) {
	s := invoicing.Status(status)
	if !s.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	inv.Status = s
	inv.UpdatedAt = uc.now()
	if err := uc.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, nil, nil)
	return &resp, nil
}

// Delete elimina la factura junto con sus líneas, pagos y envíos.
func (uc *InvoiceUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	return uc.invoices.Delete(ctx, companyID, id)
}

func (uc *InvoiceUseCase) load(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	inv, err := uc.invoices.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}
