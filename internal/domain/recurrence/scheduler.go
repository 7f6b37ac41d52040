// Package recurrence calcula la próxima fecha de generación de una factura recurrente.
package recurrence

import (
	"time"

	"github.com/jinzhu/now"
)

// Frequency periodicidad de una regla recurrente.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// Frequencies lista las periodicidades soportadas (orden de presentación).
var Frequencies = []Frequency{Daily, Weekly, Monthly, Quarterly, Yearly}

// Valid indica si f es una periodicidad conocida.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// ParseFrequency devuelve la periodicidad y si fue reconocida. Un valor desconocido se
// conserva tal cual; NextInvoiceDate lo trata como mensual.
func ParseFrequency(s string) (Frequency, bool) {
	f := Frequency(s)
	return f, f.Valid()
}

// DateLayout formato de fecha sin hora usado en toda la API.
const DateLayout = "2006-01-02"

// DateOf trunca t a su fecha de calendario (medianoche UTC).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta "YYYY-MM-DD" como fecha UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// NextInvoiceDate calcula la próxima fecha de generación.
//
// Si start es posterior a now (por fecha), la regla aún no empieza y se devuelve start.
// Si no, se avanza now un período de la frecuencia. Meses y años se suman por calendario
// recortando al último día del mes (31-ene + 1 mes = 28/29-feb). Una frecuencia desconocida
// cae en la rama por defecto: mensual. La fecha de fin de la regla no se consulta aquí.
func NextInvoiceDate(start time.Time, freq Frequency, nowT time.Time) time.Time {
	start, today := DateOf(start), DateOf(nowT)
	if start.After(today) {
		return start
	}
	switch freq {
	case Daily:
		return today.AddDate(0, 0, 1)
	case Weekly:
		return today.AddDate(0, 0, 7)
	case Monthly:
		return AddMonths(today, 1)
	case Quarterly:
		return AddMonths(today, 3)
	case Yearly:
		return AddMonths(today, 12)
	default:
		return AddMonths(today, 1)
	}
}

// AddMonths suma n meses de calendario conservando el día del mes, recortado al último
// día del mes destino. time.AddDate no sirve aquí: normaliza 31-feb a 3-mar.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := now.With(first).EndOfMonth().Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
