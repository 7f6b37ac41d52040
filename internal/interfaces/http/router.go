package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/recurring"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/sharing"
	"github.com/jhoicas/InvoiceFlow-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	CompanyUC   *billing.CompanyUseCase
	ClientUC    *billing.ClientUseCase
	InvoiceUC   *billing.InvoiceUseCase
	PaymentUC   *billing.PaymentUseCase
	InvoicePDF  *billing.PDFUseCase
	RecurringUC *recurring.UseCase
	Generator   *recurring.Generator
	ShareUC     *sharing.UseCase
	JWTSecret   string
	Now         func() time.Time // opcional; generación manual de recurrentes
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Enlaces públicos (sin token; el enlace lleva su propio control de acceso)
	shareHandler := NewShareHandler(deps.ShareUC)
	app.Get("/shared/:token", shareHandler.OpenLink)
	app.Get("/shared/:token/pdf", shareHandler.LinkPDF)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Get("/company", companyHandler.Get)
	api.Put("/company", RequireRole(jwt.RoleOwner), companyHandler.Update)

	clients := api.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Get("/stats", clientHandler.Stats)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF)
	invoices.Post("/preview", invoiceHandler.Preview)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Patch("/:id/status", invoiceHandler.UpdateStatus)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Delete("/:id", invoiceHandler.Delete)

	payments := api.Group("/payments")
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	payments.Get("/stats", paymentHandler.Stats)
	payments.Get("/available-invoices", paymentHandler.AvailableInvoices)
	payments.Post("/", paymentHandler.Record)
	payments.Get("/", paymentHandler.List)
	payments.Get("/:id", paymentHandler.GetByID)
	payments.Put("/:id", paymentHandler.Update)
	payments.Delete("/:id", paymentHandler.Delete)

	rec := api.Group("/recurring-invoices")
	recurringHandler := NewRecurringHandler(deps.RecurringUC, deps.Generator, deps.Now)
	rec.Get("/stats", recurringHandler.Stats)
	rec.Post("/generate", recurringHandler.Generate)
	rec.Post("/", recurringHandler.Create)
	rec.Get("/", recurringHandler.List)
	rec.Get("/:id", recurringHandler.GetByID)
	rec.Put("/:id", recurringHandler.Update)
	rec.Patch("/:id/toggle", recurringHandler.Toggle)
	rec.Delete("/:id", recurringHandler.Delete)

	shares := api.Group("/shares")
	shares.Post("/email", shareHandler.ShareByEmail)
	shares.Post("/link", shareHandler.ShareByLink)
	shares.Post("/collaboration", shareHandler.ShareWithTeam)
	shares.Get("/stats", shareHandler.Stats)
	shares.Get("/templates", shareHandler.Templates)
	shares.Get("/", shareHandler.History)
}
