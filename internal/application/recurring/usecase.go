// Package recurring administra reglas de facturación recurrente y genera las facturas vencidas.
package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

// UseCase CRUD de reglas recurrentes.
type UseCase struct {
	rules   repository.RecurringInvoiceRepository
	clients repository.ClientRepository
	now     func() time.Time
	log     zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(rules repository.RecurringInvoiceRepository, clients repository.ClientRepository, opts ...Option) *UseCase {
	o := newOptions(opts)
	return &UseCase{rules: rules, clients: clients, now: o.now, log: o.log}
}

// Create valida la regla y calcula su próxima fecha de generación.
func (uc *UseCase) Create(ctx context.Context, companyID string, in dto.CreateRecurringInvoiceRequest) (*dto.RecurringInvoiceResponse, error) {
	start, err := billing.ParseOptionalDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, fmt.Errorf("%w: start_date es obligatorio", domain.ErrInvalidInput)
	}
	end, err := billing.ParseOptionalDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	rule := &entity.RecurringInvoice{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		ClientID:     in.ClientID,
		ClientName:   strings.TrimSpace(in.ClientName),
		Description:  strings.TrimSpace(in.Description),
		Amount:       in.Amount,
		Frequency:    recurrence.Frequency(in.Frequency),
		StartDate:    *start,
		EndDate:      end,
		DueAfterDays: entity.DefaultDueAfterDays,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.DueAfterDays != nil {
		rule.DueAfterDays = *in.DueAfterDays
	}
	if in.IsActive != nil {
		rule.IsActive = *in.IsActive
	}
	if err := uc.resolveClient(ctx, rule); err != nil {
		return nil, err
	}
	if err := validate(rule); err != nil {
		return nil, err
	}
	rule.NextInvoiceDate = recurrence.NextInvoiceDate(rule.StartDate, rule.Frequency, now)

	if err := uc.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	uc.log.Info().Str("rule_id", rule.ID).Str("frequency", string(rule.Frequency)).
		Str("next_invoice_date", rule.NextInvoiceDate.Format(recurrence.DateLayout)).Msg("regla recurrente creada")
	resp := toResponse(rule)
	return &resp, nil
}

// Update aplica los campos presentes y recalcula la próxima fecha.
func (uc *UseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateRecurringInvoiceRequest) (*dto.RecurringInvoiceResponse, error) {
	rule, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.ClientID != nil {
		rule.ClientID = *in.ClientID
	}
	if in.ClientName != nil {
		rule.ClientName = strings.TrimSpace(*in.ClientName)
	}
	if in.Description != nil {
		rule.Description = strings.TrimSpace(*in.Description)
	}
	if in.Amount != nil {
		rule.Amount = *in.Amount
	}
	if in.Frequency != nil {
		rule.Frequency = recurrence.Frequency(*in.Frequency)
	}
	if in.StartDate != nil {
		start, err := billing.ParseOptionalDate(*in.StartDate)
		if err != nil {
			return nil, err
		}
		if start == nil {
			return nil, fmt.Errorf("%w: start_date es obligatorio", domain.ErrInvalidInput)
		}
		rule.StartDate = *start
	}
	if in.EndDate != nil {
		if rule.EndDate, err = billing.ParseOptionalDate(*in.EndDate); err != nil {
			return nil, err
		}
	}
	if in.DueAfterDays != nil {
		rule.DueAfterDays = *in.DueAfterDays
	}
	if in.IsActive != nil {
		rule.IsActive = *in.IsActive
	}
	if in.ClientID != nil {
		if err := uc.resolveClient(ctx, rule); err != nil {
			return nil, err
		}
	}
	if err := validate(rule); err != nil {
		return nil, err
	}
	return uc.save(ctx, rule)
}

// Toggle activa o desactiva la regla.
func (uc *UseCase) Toggle(ctx context.Context, companyID, id string) (*dto.RecurringInvoiceResponse, error) {
	rule, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	rule.IsActive = !rule.IsActive
	return uc.save(ctx, rule)
}

func (uc *UseCase) save(ctx context.Context, rule *entity.RecurringInvoice) (*dto.RecurringInvoiceResponse, error) {
	now := uc.now()
	rule.NextInvoiceDate = recurrence.NextInvoiceDate(rule.StartDate, rule.Frequency, now)
	rule.UpdatedAt = now
	if err := uc.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	resp := toResponse(rule)
	return &resp, nil
}

// Delete elimina la regla; las facturas ya emitidas se conservan.
func (uc *UseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	return uc.rules.Delete(ctx, companyID, id)
}

func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*dto.RecurringInvoiceResponse, error) {
	rule, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(rule)
	return &resp, nil
}

func (uc *UseCase) List(ctx context.Context, companyID string) ([]dto.RecurringInvoiceResponse, error) {
	rules, err := uc.rules.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecurringInvoiceResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, toResponse(r))
	}
	return out, nil
}

// Stats cantidad de reglas, activas, ingreso mensual recurrente y facturas generadas.
func (uc *UseCase) Stats(ctx context.Context, companyID string) (*dto.RecurringStatsResponse, error) {
	rules, err := uc.rules.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	stats := &dto.RecurringStatsResponse{TotalRules: len(rules), MonthlyRevenue: decimal.Zero}
	for _, r := range rules {
		stats.TotalGenerated += r.TotalGenerated
		if !r.IsActive {
			continue
		}
		stats.ActiveRules++
		if r.Frequency == recurrence.Monthly {
			stats.MonthlyRevenue = stats.MonthlyRevenue.Add(r.Amount)
		}
	}
	return stats, nil
}

// resolveClient completa el nombre desde el cliente enlazado.
func (uc *UseCase) resolveClient(ctx context.Context, rule *entity.RecurringInvoice) error {
	if rule.ClientID == "" {
		return nil
	}
	c, err := uc.clients.GetByID(ctx, rule.CompanyID, rule.ClientID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: el cliente %s no existe", domain.ErrInvalidInput, rule.ClientID)
	}
	if rule.ClientName == "" {
		rule.ClientName = c.Name
	}
	return nil
}

func validate(rule *entity.RecurringInvoice) error {
	switch {
	case rule.ClientName == "":
		return fmt.Errorf("%w: el nombre del cliente es obligatorio", domain.ErrInvalidInput)
	case !rule.Frequency.Valid():
		return fmt.Errorf("%w: frecuencia %q", domain.ErrInvalidInput, rule.Frequency)
	case !rule.Amount.IsPositive():
		return fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
	case rule.DueAfterDays < 0:
		return fmt.Errorf("%w: due_after_days no puede ser negativo", domain.ErrInvalidInput)
	case rule.EndDate != nil && rule.EndDate.Before(rule.StartDate):
		return fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
	}
	return nil
}

func toResponse(r *entity.RecurringInvoice) dto.RecurringInvoiceResponse {
	return dto.RecurringInvoiceResponse{
		ID:              r.ID,
		ClientID:        r.ClientID,
		ClientName:      r.ClientName,
		Description:     r.Description,
		Amount:          r.Amount,
		Frequency:       string(r.Frequency),
		StartDate:       r.StartDate.Format(recurrence.DateLayout),
		EndDate:         billing.FormatDate(r.EndDate),
		DueAfterDays:    r.DueAfterDays,
		IsActive:        r.IsActive,
		NextInvoiceDate: r.NextInvoiceDate.Format(recurrence.DateLayout),
		TotalGenerated:  r.TotalGenerated,
		LastGeneratedAt: r.LastGeneratedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (uc *UseCase) load(ctx context.Context, companyID, id string) (*entity.RecurringInvoice, error) {
	rule, err := uc.rules.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrNotFound
	}
	return rule, nil
}
