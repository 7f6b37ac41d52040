// Package mail implementa el envío de correos de facturas (SMTP con gomail o solo log).
package mail

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/sharing"
	"github.com/jhoicas/InvoiceFlow-api/pkg/config"
)

// SMTPMailer envía correos por SMTP. Implementa sharing.Mailer.
type SMTPMailer struct {
	from string
	send func(m *gomail.Message) error
}

// NewSMTPMailer crea el mailer con el servidor de la configuración. Cada envío abre su conexión.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTPMailer{from: cfg.From, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

// NewMailerWithSender usa un gomail.Sender propio (conexión compartida o tests).
func NewMailerWithSender(from string, s gomail.Sender) *SMTPMailer {
	return &SMTPMailer{from: from, send: func(m *gomail.Message) error { return gomail.Send(s, m) }}
}

// Send arma el mensaje en texto plano con los adjuntos en memoria y lo envía.
func (m *SMTPMailer) Send(ctx context.Context, e sharing.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(e.To) == 0 {
		return fmt.Errorf("mail: sin destinatarios")
	}
	if err := m.send(m.buildMessage(e)); err != nil {
		return fmt.Errorf("mail: enviar a %v: %w", e.To, err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(e sharing.Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", e.To...)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.Body)
	for _, a := range e.Attachments {
		content := a.Content
		msg.Attach(a.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		)
	}
	return msg
}
