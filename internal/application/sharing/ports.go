package sharing

import "context"

// Attachment archivo adjunto de un correo.
type Attachment struct {
	Filename string
	Content  []byte
}

// Email mensaje saliente.
type Email struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer puerto de envío de correo (SMTP o solo log).
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// PDFRenderer genera el PDF de una factura; link se imprime como QR si no está vacío.
type PDFRenderer interface {
	DownloadInvoicePDF(ctx context.Context, companyID, invoiceID, link string) ([]byte, string, error)
}
