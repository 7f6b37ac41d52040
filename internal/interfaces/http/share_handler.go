package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/sharing"
)

// HeaderSharePassword cabecera con la contraseña de un enlace protegido.
const HeaderSharePassword = "X-Share-Password"

// ShareHandler envío y compartición de facturas.
type ShareHandler struct {
	uc *sharing.UseCase
}

// NewShareHandler construye el handler.
func NewShareHandler(uc *sharing.UseCase) *ShareHandler {
	return &ShareHandler{uc: uc}
}

// ShareByEmail godoc
// @Summary      Enviar facturas por correo
// @Description  Un registro por factura y destinatario. schedule_at futuro deja el envío programado.
// @Tags         shares
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShareByEmailRequest  true  "Envío"
// @Success      201   {array}   dto.ShareResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/shares/email [post]
func (h *ShareHandler) ShareByEmail(c *fiber.Ctx) error {
	var in dto.ShareByEmailRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ShareByEmail(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ShareByLink godoc
// @Summary      Crear enlaces públicos
// @Tags         shares
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShareByLinkRequest  true  "Enlace"
// @Success      201   {array}   dto.ShareResponse
// @Security     BearerAuth
// @Router       /api/shares/link [post]
func (h *ShareHandler) ShareByLink(c *fiber.Ctx) error {
	var in dto.ShareByLinkRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ShareByLink(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ShareWithTeam POST /api/shares/collaboration
func (h *ShareHandler) ShareWithTeam(c *fiber.Ctx) error {
	var in dto.ShareWithTeamRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ShareWithTeam(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History GET /api/shares?method=email|link|collaboration
func (h *ShareHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.Context(), GetCompanyID(c), c.Query("method"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stats GET /api/shares/stats
func (h *ShareHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Templates GET /api/shares/templates
func (h *ShareHandler) Templates(c *fiber.Ctx) error {
	return c.JSON(h.uc.TemplateList())
}

// OpenLink godoc
// @Summary      Ver factura compartida (público)
// @Tags         shared
// @Produce      json
// @Param        token              path    string  true   "Token del enlace"
// @Param        X-Share-Password   header  string  false  "Contraseña si el enlace es protegido"
// @Success      200  {object}  dto.SharedInvoiceResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      410  {object}  dto.ErrorResponse
// @Router       /shared/{token} [get]
func (h *ShareHandler) OpenLink(c *fiber.Ctx) error {
	out, err := h.uc.OpenLink(c.Context(), c.Params("token"), sharePassword(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LinkPDF GET /shared/:token/pdf (solo si el enlace permite descarga)
func (h *ShareHandler) LinkPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.LinkPDF(c.Context(), c.Params("token"), sharePassword(c))
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, pdfBytes, filename)
}

// sharePassword lee la contraseña de la cabecera o, si falta, de ?password=.
func sharePassword(c *fiber.Ctx) string {
	if p := c.Get(HeaderSharePassword); p != "" {
		return p
	}
	return c.Query("password")
}
