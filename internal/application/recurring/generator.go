package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/invoicing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/recurrence"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

// Generator emite las facturas de las reglas cuya próxima fecha ya llegó.
type Generator struct {
	tx      billing.BillingTxRunner
	rules   repository.RecurringInvoiceRepository
	clients repository.ClientRepository
	log     zerolog.Logger
}

// NewGenerator construye el generador.
func NewGenerator(
	tx billing.BillingTxRunner,
	rules repository.RecurringInvoiceRepository,
	clients repository.ClientRepository,
	opts ...Option,
) *Generator {
	o := newOptions(opts)
	return &Generator{tx: tx, rules: rules, clients: clients, log: o.log}
}

// GenerateDue recorre las reglas activas de companyID ("" = todas las empresas) y emite una factura
// pendiente por cada regla vencida a la fecha de now. Cada regla se procesa en su propia transacción:
// factura, líneas y avance de la regla se confirman juntos. Una regla con error no detiene la corrida.
func (g *Generator) GenerateDue(ctx context.Context, companyID string, now time.Time) (*dto.GenerateRecurringResponse, error) {
	today := recurrence.DateOf(now)
	rules, err := g.rules.ListActive(ctx, companyID)
	if err != nil {
		return nil, err
	}
	res := &dto.GenerateRecurringResponse{
		RunDate:   today.Format(recurrence.DateLayout),
		Evaluated: len(rules),
		Generated: []dto.GeneratedInvoice{},
	}
	for _, rule := range rules {
		if rule.NextInvoiceDate.After(today) || rule.Ended(today) {
			res.Skipped++
			continue
		}
		gen, err := g.generate(ctx, rule, now)
		if errors.Is(err, domain.ErrConflict) {
			g.log.Debug().Str("rule_id", rule.ID).Msg("regla ya avanzada por otra corrida")
			res.Skipped++
			continue
		}
		if err != nil {
			g.log.Error().Err(err).Str("rule_id", rule.ID).Str("company_id", rule.CompanyID).
				Msg("generar factura recurrente")
			res.Failed = append(res.Failed, rule.ID)
			continue
		}
		res.Generated = append(res.Generated, *gen)
	}
	g.log.Info().Str("run_date", res.RunDate).Int("evaluated", res.Evaluated).Int("generated", len(res.Generated)).
		Int("skipped", res.Skipped).Int("failed", len(res.Failed)).Msg("corrida de facturas recurrentes")
	return res, nil
}

func (g *Generator) generate(ctx context.Context, rule *entity.RecurringInvoice, now time.Time) (*dto.GeneratedInvoice, error) {
	today := recurrence.DateOf(now)
	due := today.AddDate(0, 0, rule.DueAfterDays)
	description := rule.Description
	if description == "" {
		description = fmt.Sprintf("Servicio %s", rule.Frequency)
	}
	items := []invoicing.LineItem{{Description: description, Quantity: decimal.NewFromInt(1), UnitPrice: rule.Amount}}
	totals := invoicing.Compute(items, decimal.Zero)

	inv := &entity.Invoice{
		CompanyID:   rule.CompanyID,
		ClientID:    rule.ClientID,
		ClientName:  rule.ClientName,
		Subtotal:    totals.Subtotal,
		TaxRate:     decimal.Zero,
		TaxAmount:   totals.TaxAmount,
		Amount:      totals.Total,
		AmountPaid:  decimal.Zero,
		DueDate:     &due,
		Description: description,
		Status:      invoicing.DeriveStatus(decimal.Zero, totals.Total),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rule.ClientID != "" {
		c, err := g.clients.GetByID(ctx, rule.CompanyID, rule.ClientID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			inv.ClientEmail, inv.ClientAddress = c.Email, c.Address
		} else {
			inv.ClientID = ""
		}
	}

	next := recurrence.NextInvoiceDate(rule.StartDate, rule.Frequency, now)
	err := billing.PersistInvoice(ctx, g.tx, inv, items,
		func(_ repository.InvoiceRepository, _ repository.PaymentRepository, recRepo repository.RecurringInvoiceRepository) error {
			updated := *rule
			updated.TotalGenerated++
			generatedAt := now
			updated.LastGeneratedAt = &generatedAt
			updated.NextInvoiceDate = next
			updated.UpdatedAt = now
			// Otra corrida ya emitió este período: ErrConflict revierte la factura recién insertada.
			if err := recRepo.Advance(ctx, &updated, rule.NextInvoiceDate); err != nil {
				return err
			}
			*rule = updated
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &dto.GeneratedInvoice{
		RuleID:        rule.ID,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientName:    inv.ClientName,
		Amount:        inv.Amount,
		NextDate:      next.Format(recurrence.DateLayout),
	}, nil
}
