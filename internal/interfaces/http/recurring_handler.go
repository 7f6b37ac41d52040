package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/recurring"
)

// RecurringHandler reglas de facturación recurrente (protegido).
type RecurringHandler struct {
	uc  *recurring.UseCase
	gen *recurring.Generator
	now func() time.Time
}

// NewRecurringHandler construye el handler. now nil = time.Now.
func NewRecurringHandler(uc *recurring.UseCase, gen *recurring.Generator, now func() time.Time) *RecurringHandler {
	if now == nil {
		now = time.Now
	}
	return &RecurringHandler{uc: uc, gen: gen, now: now}
}

// Create godoc
// @Summary      Crear regla recurrente
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRecurringInvoiceRequest  true  "Regla"
// @Success      201   {object}  dto.RecurringInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/recurring-invoices [post]
func (h *RecurringHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRecurringInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/recurring-invoices
func (h *RecurringHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/recurring-invoices/:id
func (h *RecurringHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/recurring-invoices/:id
func (h *RecurringHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRecurringInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Toggle activa o pausa la regla.
// PATCH /api/recurring-invoices/:id/toggle
func (h *RecurringHandler) Toggle(c *fiber.Ctx) error {
	out, err := h.uc.Toggle(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/recurring-invoices/:id
func (h *RecurringHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats GET /api/recurring-invoices/stats
func (h *RecurringHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Generate godoc
// @Summary      Generar facturas vencidas de las reglas de la empresa
// @Tags         recurring
// @Produce      json
// @Success      200  {object}  dto.GenerateRecurringResponse
// @Security     BearerAuth
// @Router       /api/recurring-invoices/generate [post]
func (h *RecurringHandler) Generate(c *fiber.Ctx) error {
	out, err := h.gen.GenerateDue(c.Context(), GetCompanyID(c), h.now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
