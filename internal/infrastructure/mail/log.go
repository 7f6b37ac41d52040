package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/sharing"
	"github.com/jhoicas/InvoiceFlow-api/pkg/config"
)

// LogMailer registra el correo en el log en lugar de enviarlo (SMTP_HOST vacío).
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer crea el mailer de desarrollo.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, e sharing.Email) error {
	names := make([]string, 0, len(e.Attachments))
	for _, a := range e.Attachments {
		names = append(names, a.Filename)
	}
	m.log.Info().
		Strs("to", e.To).
		Str("subject", e.Subject).
		Strs("attachments", names).
		Msg("correo no enviado: SMTP sin configurar")
	return nil
}

// New elige el mailer según la configuración.
func New(cfg config.SMTPConfig, log zerolog.Logger) sharing.Mailer {
	if !cfg.Enabled() {
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg)
}
