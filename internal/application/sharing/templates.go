package sharing

import (
	"strconv"
	"strings"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/pkg/money"
)

// Claves de plantilla.
const (
	TemplateProfessional = "professional"
	TemplateFriendly     = "friendly"
	TemplateReminder     = "reminder"
)

// Template asunto y cuerpo con marcadores {invoiceNumber} {companyName} {clientName} {amount} {dueDate} {senderName}.
type Template struct {
	Key     string
	Name    string
	Subject string
	Message string
}

var templates = []Template{
	{
		Key:     TemplateProfessional,
		Name:    "Professional",
		Subject: "Invoice #{invoiceNumber} from {companyName}",
		Message: `Dear {clientName},

Please find attached invoice #{invoiceNumber} for your review and payment.

Invoice Details:
- Amount: {amount}
- Due Date: {dueDate}

If you have any questions, please don't hesitate to contact us.

Best regards,
{senderName}`,
	},
	{
		Key:     TemplateFriendly,
		Name:    "Friendly",
		Subject: "Your invoice #{invoiceNumber} is ready!",
		Message: `Hi {clientName}!

Hope you're doing well! I've attached invoice #{invoiceNumber} for the work we completed.

Amount: {amount}
Due: {dueDate}

Let me know if you need any clarification!

Thanks,
{senderName}`,
	},
	{
		Key:     TemplateReminder,
		Name:    "Payment reminder",
		Subject: "Payment Reminder - Invoice #{invoiceNumber}",
		Message: `Dear {clientName},

This is a friendly reminder that invoice #{invoiceNumber} is due for payment.

Invoice Details:
- Amount: {amount}
- Original Due Date: {dueDate}

Please process payment at your earliest convenience.

Thank you,
{senderName}`,
	},
}

// Templates plantillas disponibles en orden de presentación.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// LookupTemplate busca por clave; "" devuelve professional.
func LookupTemplate(key string) (Template, bool) {
	if key == "" {
		key = TemplateProfessional
	}
	for _, t := range templates {
		if t.Key == key {
			return t, true
		}
	}
	return Template{}, false
}

// Render reemplaza los marcadores con los datos de la factura y la empresa.
func Render(text string, inv *entity.Invoice, companyName string) string {
	due := billing.FormatDate(inv.DueDate)
	if due == "" {
		due = "upon receipt"
	}
	return strings.NewReplacer(
		"{invoiceNumber}", strconv.FormatInt(inv.InvoiceNumber, 10),
		"{companyName}", companyName,
		"{senderName}", companyName,
		"{clientName}", inv.ClientName,
		"{amount}", money.Format(inv.Amount),
		"{dueDate}", due,
	).Replace(text)
}
