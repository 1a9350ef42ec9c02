package billing

import (
	"math"
	"time"
)

// StartOfDay devuelve las 00:00 del día calendario de t en su propia zona.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextBillingDate calcula la próxima fecha de cobro mensual a partir de la fecha ancla.
//
// El ancla se toma como fecha calendario (su año/mes/día) en la zona de today. Mientras el
// candidato sea estrictamente anterior a hoy se le suma un mes calendario con el desborde
// estándar de time.AddDate: 31/01/2024 + 1 mes = 02/03/2024, y los meses siguientes parten
// de esa fecha ya desplazada.
func NextBillingDate(anchor, today time.Time) time.Time {
	limit := StartOfDay(today)
	y, m, d := anchor.Date()
	candidate := time.Date(y, m, d, 0, 0, 0, 0, limit.Location())
	for candidate.Before(limit) {
		candidate = candidate.AddDate(0, 1, 0)
	}
	return candidate
}

// DaysUntil devuelve ceil(next - today) en días. Un valor <= 0 significa "vence hoy o vencido".
// La resta se hace sobre la hora de pared para que los cambios de horario no alteren el conteo.
func DaysUntil(next, today time.Time) int {
	diff := wallClock(next).Sub(wallClock(today))
	return int(math.Ceil(diff.Hours() / 24))
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DueWindow ventana de urgencia de cobro.
type DueWindow string

const (
	DueToday     DueWindow = "today"
	DueThisWeek  DueWindow = "week"
	DueThisMonth DueWindow = "month"
)

// Límites en días de cada ventana (inclusive).
var dueWindowLimits = map[DueWindow]int{
	DueToday:     0,
	DueThisWeek:  7,
	DueThisMonth: 30,
}

// IsValid indica si la ventana es conocida.
func (w DueWindow) IsValid() bool {
	_, ok := dueWindowLimits[w]
	return ok
}

// Contains indica si un cliente a days días del cobro entra en la ventana.
// Las ventanas son acumulativas: lo que vence hoy también vence esta semana.
func (w DueWindow) Contains(days int) bool {
	limit, ok := dueWindowLimits[w]
	return ok && days <= limit
}

// Classify devuelve la ventana más estrecha que contiene days, o "" si vence en más de 30 días.
func Classify(days int) DueWindow {
	for _, w := range []DueWindow{DueToday, DueThisWeek, DueThisMonth} {
		if w.Contains(days) {
			return w
		}
	}
	return ""
}
