package entity

import "time"

// Canales de envío.
const (
	ShareMethodEmail         = "email"
	ShareMethodLink          = "link"
	ShareMethodCollaboration = "collaboration"
)

// Estados de un envío.
const (
	ShareStatusSent      = "sent"
	ShareStatusScheduled = "scheduled"
	ShareStatusSending   = "sending" // reservado por quien lo va a enviar
	ShareStatusFailed    = "failed"
	ShareStatusActive    = "active"  // enlace vigente
	ShareStatusExpired   = "expired" // enlace vencido
	ShareStatusInvited   = "invited"
)

// ShareRecord una entrega de una factura a un destinatario (correo, enlace o invitación).
type ShareRecord struct {
	ID            string
	CompanyID     string
	InvoiceID     string
	InvoiceNumber int64
	Method        string
	Recipient     string
	Status        string
	Subject       string
	Message       string
	AttachPDF     bool
	ScheduledAt   *time.Time
	SentAt        *time.Time
	Token         string // solo enlaces
	Link          string
	PasswordHash  string
	ExpiresAt     *time.Time
	AllowDownload bool
	Permissions   string // solo colaboración: view, comment, edit
	Clicks        int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
