package mail_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/sharing"
	"github.com/jhoicas/InvoiceFlow-api/internal/infrastructure/mail"
	"github.com/jhoicas/InvoiceFlow-api/pkg/config"
)

type captured struct {
	from string
	to   []string
	raw  string
}

func capture(out *[]captured, err error) gomail.SendFunc {
	return func(from string, to []string, msg io.WriterTo) error {
		var buf bytes.Buffer
		if _, werr := msg.WriteTo(&buf); werr != nil {
			return werr
		}
		*out = append(*out, captured{from: from, to: to, raw: buf.String()})
		return err
	}
}

func TestSMTPMailer_MensajeConAdjunto(t *testing.T) {
	var sent []captured
	m := mail.NewMailerWithSender("facturas@acme.test", capture(&sent, nil))

	err := m.Send(context.Background(), sharing.Email{
		To:          []string{"ap@globex.test"},
		Subject:     "Invoice #1001 from Acme Studio",
		Body:        "Dear Globex,",
		Attachments: []sharing.Attachment{{Filename: "factura_1001.pdf", Content: []byte("%PDF-1.4")}},
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "facturas@acme.test", sent[0].from)
	assert.Equal(t, []string{"ap@globex.test"}, sent[0].to)
	assert.Contains(t, sent[0].raw, "Subject: Invoice #1001 from Acme Studio")
	assert.Contains(t, sent[0].raw, "Dear Globex,")
	assert.Contains(t, sent[0].raw, `filename="factura_1001.pdf"`)
	assert.Contains(t, sent[0].raw, "application/pdf")
}

func TestSMTPMailer_Errores(t *testing.T) {
	var sent []captured
	m := mail.NewMailerWithSender("facturas@acme.test", capture(&sent, errors.New("421 service not available")))

	err := m.Send(context.Background(), sharing.Email{To: []string{"ap@globex.test"}, Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "421")

	err = m.Send(context.Background(), sharing.Email{Subject: "x"})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Send(ctx, sharing.Email{To: []string{"ap@globex.test"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sent, 1, "solo el primer intento llegó al servidor")
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := mail.NewLogMailer(zerolog.New(&buf))

	require.NoError(t, m.Send(context.Background(), sharing.Email{
		To:          []string{"ap@globex.test"},
		Subject:     "Invoice #1001",
		Attachments: []sharing.Attachment{{Filename: "factura_1001.pdf"}},
	}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Invoice #1001", entry["subject"])
	assert.Equal(t, []any{"ap@globex.test"}, entry["to"])
	assert.Equal(t, []any{"factura_1001.pdf"}, entry["attachments"])
}

func TestNew_EligePorConfiguracion(t *testing.T) {
	_, ok := mail.New(config.SMTPConfig{}, zerolog.Nop()).(*mail.LogMailer)
	assert.True(t, ok)
	_, ok = mail.New(config.SMTPConfig{Host: "smtp.acme.test", Port: 587}, zerolog.Nop()).(*mail.SMTPMailer)
	assert.True(t, ok)
}
