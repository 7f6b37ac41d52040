package billing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

// PaymentUseCase registra pagos y mantiene amount_paid/status de la factura coherentes con ellos.
type PaymentUseCase struct {
	tx       BillingTxRunner
	invoices repository.InvoiceRepository
	payments repository.PaymentRepository
	now      func() time.Time
	log      zerolog.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	tx BillingTxRunner,
	invoices repository.InvoiceRepository,
	payments repository.PaymentRepository,
	opts ...Option,
) *PaymentUseCase {
	o := newOptions(opts)
	return &PaymentUseCase{tx: tx, invoices: invoices, payments: payments, now: o.now, log: o.log}
}

// Record registra un pago y recalcula la factura en la misma transacción.
func (uc *PaymentUseCase) Record(ctx context.Context, companyID string, in dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error) {
	if in.InvoiceID == "" {
		return nil, fmt.Errorf("%w: invoice_id es obligatorio", domain.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
	}
	method := in.Method
	if method == "" {
		method = entity.PaymentMethodCash
	}
	if !entity.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, in.Method)
	}
	now := uc.now()
	date := recurrence.DateOf(now)
	if in.Date != "" {
		d, err := ParseOptionalDate(in.Date)
		if err != nil {
			return nil, err
		}
		date = *d
	}
	reference := strings.TrimSpace(in.Reference)
	if reference == "" {
		reference = "PAY-" + strconv.FormatInt(now.UnixMilli(), 10)
	}

	p := &entity.Payment{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		InvoiceID:  in.InvoiceID,
		Amount:     in.Amount,
		Method:     method,
		Date:       date,
		Reference:  reference,
		Notes:      in.Notes,
		RecordedAt: now,
		UpdatedAt:  now,
	}

	var inv *entity.Invoice
	err := uc.tx.RunBilling(ctx, func(invRepo repository.InvoiceRepository, payRepo repository.PaymentRepository, _ repository.RecurringInvoiceRepository) error {
		var err error
		if inv, err = invRepo.GetByIDForUpdate(ctx, companyID, in.InvoiceID); err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := payRepo.Create(ctx, p); err != nil {
			return err
		}
		return recompute(ctx, invRepo, payRepo, inv)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("amount", p.Amount.String()).Str("status", inv.Status.String()).
		Msg("pago registrado")
	return &dto.RecordPaymentResponse{
		Payment: toPaymentResponse(p, inv),
		Invoice: ToInvoiceResponse(inv, nil, nil),
	}, nil
}

// lockInvoices bloquea las facturas en orden de id para que dos transacciones cruzadas no se
// esperen mutuamente. Las ausentes quedan fuera del mapa.
func lockInvoices(ctx context.Context, invRepo repository.InvoiceRepository, companyID string, ids ...string) (map[string]*entity.Invoice, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	locked := make(map[string]*entity.Invoice, len(sorted))
	for _, id := range sorted {
		if _, ok := locked[id]; ok {
			continue
		}
		inv, err := invRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			locked[id] = inv
		}
	}
	return locked, nil
}

// recompute recalcula amount_paid = Σ pagos y el estado derivado de la factura. La fila de inv
// debe estar bloqueada por la transacción en curso.
func recompute(ctx context.Context, invRepo repository.InvoiceRepository, payRepo repository.PaymentRepository, inv *entity.Invoice) error {
	payments, err := payRepo.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return err
	}
	inv.AmountPaid = entity.SumPayments(payments)
	inv.Status = invoicing.DeriveStatus(inv.AmountPaid, inv.Amount)
	return invRepo.UpdatePayment(ctx, inv.CompanyID, inv.ID, inv.AmountPaid, inv.Status)
}

// Update edita un pago. Si cambia de factura se recalculan ambas.
func (uc *PaymentUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdatePaymentRequest) (*dto.PaymentResponse, error) {
	p, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	previousInvoice := p.InvoiceID
	if in.InvoiceID != nil && *in.InvoiceID != "" {
		p.InvoiceID = *in.InvoiceID
	}
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
		}
		p.Amount = *in.Amount
	}
	if in.Method != nil {
		if !entity.ValidPaymentMethod(*in.Method) {
			return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, *in.Method)
		}
		p.Method = *in.Method
	}
	if in.Date != nil {
		d, err := ParseOptionalDate(*in.Date)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, fmt.Errorf("%w: la fecha del pago es obligatoria", domain.ErrInvalidInput)
		}
		p.Date = *d
	}
	if in.Reference != nil && strings.TrimSpace(*in.Reference) != "" {
		p.Reference = strings.TrimSpace(*in.Reference)
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	p.UpdatedAt = uc.now()

	var inv *entity.Invoice
	err = uc.tx.RunBilling(ctx, func(invRepo repository.InvoiceRepository, payRepo repository.PaymentRepository, _ repository.RecurringInvoiceRepository) error {
		locked, err := lockInvoices(ctx, invRepo, companyID, p.InvoiceID, previousInvoice)
		if err != nil {
			return err
		}
		if inv = locked[p.InvoiceID]; inv == nil {
			return fmt.Errorf("%w: la factura %s no existe", domain.ErrInvalidInput, p.InvoiceID)
		}
		if err := payRepo.Update(ctx, p); err != nil {
			return err
		}
		if err := recompute(ctx, invRepo, payRepo, inv); err != nil {
			return err
		}
		if previousInvoice == p.InvoiceID {
			return nil
		}
		old := locked[previousInvoice]
		if old == nil {
			return nil
		}
		return recompute(ctx, invRepo, payRepo, old)
	})
	if err != nil {
		return nil, err
	}
	resp := toPaymentResponse(p, inv)
	return &resp, nil
}

// Delete elimina un pago; amount_paid de la factura puede bajar y el estado retrocede.
func (uc *PaymentUseCase) Delete(ctx context.Context, companyID, id string) error {
	p, err := uc.load(ctx, companyID, id)
	if err != nil {
		return err
	}
	return uc.tx.RunBilling(ctx, func(invRepo repository.InvoiceRepository, payRepo repository.PaymentRepository, _ repository.RecurringInvoiceRepository) error {
		inv, err := invRepo.GetByIDForUpdate(ctx, companyID, p.InvoiceID)
		if err != nil {
			return err
		}
		if err := payRepo.Delete(ctx, companyID, id); err != nil {
			return err
		}
		if inv == nil {
			return nil
		}
		return recompute(ctx, invRepo, payRepo, inv)
	})
}

// Get devuelve un pago con el número de factura y cliente.
func (uc *PaymentUseCase) Get(ctx context.Context, companyID, id string) (*dto.PaymentResponse, error) {
	p, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	inv, err := uc.invoices.GetByID(ctx, companyID, p.InvoiceID)
	if err != nil {
		return nil, err
	}
	resp := toPaymentResponse(p, inv)
	return &resp, nil
}

// List pagos de la empresa. Search busca en referencia, número de factura y nombre del cliente.
func (uc *PaymentUseCase) List(ctx context.Context, companyID string, in dto.ListPaymentsRequest) ([]dto.PaymentResponse, error) {
	if in.Method != "" && !entity.ValidPaymentMethod(in.Method) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, in.Method)
	}
	payments, err := uc.payments.List(ctx, companyID, repository.PaymentFilter{InvoiceID: in.InvoiceID, Method: in.Method})
	if err != nil {
		return nil, err
	}
	byID, err := uc.invoiceIndex(ctx, companyID)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(in.Search))
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp := toPaymentResponse(p, byID[p.InvoiceID])
		if term != "" && !matchesPayment(resp, term) {
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

func matchesPayment(p dto.PaymentResponse, term string) bool {
	return strings.Contains(strings.ToLower(p.Reference), term) ||
		strings.Contains(strings.ToLower(p.ClientName), term) ||
		strings.Contains(strconv.FormatInt(p.InvoiceNumber, 10), term)
}

// Stats total recibido, saldo pendiente (facturado - recibido), recibido en el mes actual y cantidad de pagos.
func (uc *PaymentUseCase) Stats(ctx context.Context, companyID string) (*dto.PaymentStatsResponse, error) {
	payments, err := uc.payments.List(ctx, companyID, repository.PaymentFilter{})
	if err != nil {
		return nil, err
	}
	invoices, err := uc.invoices.List(ctx, companyID, repository.InvoiceFilter{})
	if err != nil {
		return nil, err
	}
	now := uc.now()
	received, thisMonth := decimal.Zero, decimal.Zero
	for _, p := range payments {
		received = received.Add(p.Amount)
		if p.Date.Year() == now.Year() && p.Date.Month() == now.Month() {
			thisMonth = thisMonth.Add(p.Amount)
		}
	}
	invoiced := decimal.Zero
	for _, inv := range invoices {
		invoiced = invoiced.Add(inv.Amount)
	}
	return &dto.PaymentStatsResponse{
		TotalReceived: received,
		Outstanding:   invoiced.Sub(received),
		ThisMonth:     thisMonth,
		PaymentCount:  len(payments),
	}, nil
}

// AvailableInvoices facturas cuyo total pagado aún no cubre el monto.
func (uc *PaymentUseCase) AvailableInvoices(ctx context.Context, companyID string) ([]dto.AvailableInvoiceResponse, error) {
	invoices, err := uc.invoices.List(ctx, companyID, repository.InvoiceFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AvailableInvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		if !inv.AmountPaid.LessThan(inv.Amount) {
			continue
		}
		out = append(out, dto.AvailableInvoiceResponse{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			ClientName:    inv.ClientName,
			Amount:        inv.Amount,
			AmountPaid:    inv.AmountPaid,
			Outstanding:   inv.Outstanding(),
			Status:        inv.Status.String(),
		})
	}
	return out, nil
}

func (uc *PaymentUseCase) invoiceIndex(ctx context.Context, companyID string) (map[string]*entity.Invoice, error) {
	invoices, err := uc.invoices.List(ctx, companyID, repository.InvoiceFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}
	return byID, nil
}

func (uc *PaymentUseCase) load(ctx context.Context, companyID, id string) (*entity.Payment, error) {
	p, err := uc.payments.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
