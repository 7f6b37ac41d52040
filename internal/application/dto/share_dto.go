package dto

import "time"

// ShareByEmailRequest body para POST /api/shares/email.
// Subject/Message vacíos toman la plantilla indicada (professional por defecto).
type ShareByEmailRequest struct {
	InvoiceIDs []string   `json:"invoice_ids"`
	Recipients []string   `json:"recipients"`
	Template   string     `json:"template,omitempty"`
	Subject    string     `json:"subject,omitempty"`
	Message    string     `json:"message,omitempty"`
	AttachPDF  bool       `json:"attach_pdf"`
	ScheduleAt *time.Time `json:"schedule_at,omitempty"` // RFC 3339; futuro = programado
}

// ShareByLinkRequest body para POST /api/shares/link.
type ShareByLinkRequest struct {
	InvoiceIDs    []string `json:"invoice_ids"`
	ExpiresInDays *int     `json:"expires_in_days,omitempty"` // defecto 30
	Password      string   `json:"password,omitempty"`
	AllowDownload bool     `json:"allow_download"`
}

// ShareWithTeamRequest body para POST /api/shares/collaboration.
type ShareWithTeamRequest struct {
	InvoiceIDs  []string `json:"invoice_ids"`
	Emails      []string `json:"emails"`
	Permissions string   `json:"permissions,omitempty"` // view (defecto) | comment | edit
	Message     string   `json:"message,omitempty"`
}

// ShareResponse registro del historial de envíos.
type ShareResponse struct {
	ID            string     `json:"id"`
	InvoiceID     string     `json:"invoice_id"`
	InvoiceNumber int64      `json:"invoice_number"`
	Method        string     `json:"method"`
	Recipient     string     `json:"recipient,omitempty"`
	Status        string     `json:"status"`
	Subject       string     `json:"subject,omitempty"`
	Link          string     `json:"link,omitempty"`
	Protected     bool       `json:"protected,omitempty"`
	AllowDownload bool       `json:"allow_download,omitempty"`
	Permissions   string     `json:"permissions,omitempty"`
	Clicks        int        `json:"clicks"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ShareStatsResponse tarjetas del módulo de envíos. TotalViews = suma de clicks.
type ShareStatsResponse struct {
	TotalShares         int `json:"total_shares"`
	EmailShares         int `json:"email_shares"`
	LinkShares          int `json:"link_shares"`
	CollaborationShares int `json:"collaboration_shares"`
	TotalViews          int `json:"total_views"`
}

// EmailTemplateResponse plantilla de correo disponible.
type EmailTemplateResponse struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SharedInvoiceResponse vista pública de una factura compartida por enlace.
type SharedInvoiceResponse struct {
	CompanyName   string          `json:"company_name"`
	Invoice       InvoiceResponse `json:"invoice"`
	AllowDownload bool            `json:"allow_download"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}
