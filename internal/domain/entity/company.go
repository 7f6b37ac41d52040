package entity

import "time"

// Company representa la organización dueña de los registros (tenant).
// Su nombre aparece en el PDF y en las plantillas de correo.
type Company struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
