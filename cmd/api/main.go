package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/recurring"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/sharing"
	"github.com/jhoicas/InvoiceFlow-api/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/InvoiceFlow-api/internal/infrastructure/pdf"
	"github.com/jhoicas/InvoiceFlow-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/InvoiceFlow-api/internal/interfaces/http"
	"github.com/jhoicas/InvoiceFlow-api/pkg/config"
	"github.com/jhoicas/InvoiceFlow-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStorage, err := storage.Open(ctx, *cfg, true)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a la base de datos")
	}
	defer closeStorage()

	billingLog := billing.WithLogger(log.Component("billing"))
	companyUC := billing.NewCompanyUseCase(repos.Companies, billingLog)
	clientUC := billing.NewClientUseCase(repos.Clients, repos.Invoices, billingLog)
	invoiceUC := billing.NewInvoiceUseCase(repos.Tx, repos.Invoices, repos.Payments, repos.Clients, billingLog)
	paymentUC := billing.NewPaymentUseCase(repos.Tx, repos.Invoices, repos.Payments, billingLog)

	// PDF: factura con líneas, pagos y QR del enlace compartido
	pdfUC := billing.NewPDFUseCase(repos.Invoices, repos.Payments, repos.Companies, infrapdf.NewMarotoPDFGenerator(nil))

	recurringLog := recurring.WithLogger(log.Component("recurring"))
	recurringUC := recurring.NewUseCase(repos.Recurring, repos.Clients, recurringLog)
	generator := recurring.NewGenerator(repos.Tx, repos.Recurring, repos.Clients, recurringLog)

	mailer := mail.New(cfg.SMTP, log.Component("mail"))
	shareUC := sharing.NewUseCase(repos.Invoices, repos.Companies, repos.Shares, pdfUC, mailer,
		sharing.Config{BaseURL: cfg.App.PublicURL, CompanyName: cfg.App.CompanyName},
		sharing.WithLogger(log.Component("sharing")),
	)

	if cfg.Worker.Enabled {
		worker := recurring.NewWorker(generator, shareUC, recurring.Config{PollInterval: cfg.Worker.Interval}, recurringLog)
		go worker.RunForever(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "InvoiceFlow API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		CompanyUC:   companyUC,
		ClientUC:    clientUC,
		InvoiceUC:   invoiceUC,
		PaymentUC:   paymentUC,
		InvoicePDF:  pdfUC,
		RecurringUC: recurringUC,
		Generator:   generator,
		ShareUC:     shareUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
