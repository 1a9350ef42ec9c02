package billing

import (
	"time"

	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// TransitionKind clasificación de un cambio de estado de factura.
// Es solo informativa: ninguna transición se rechaza.
type TransitionKind int

const (
	// TransitionNoop mismo estado.
	TransitionNoop TransitionKind = iota
	// TransitionForward camino normal: pending → paid|overdue|cancelled, overdue → paid|cancelled.
	TransitionForward
	// TransitionUnusual sale de un estado terminal (paid, cancelled) o reabre una vencida.
	TransitionUnusual
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionNoop:
		return "noop"
	case TransitionForward:
		return "forward"
	default:
		return "unusual"
	}
}

// IsTerminal indica los estados finales del flujo normal.
func IsTerminal(s entity.InvoiceStatus) bool {
	return s == entity.InvoiceStatusPaid || s == entity.InvoiceStatusCancelled
}

// ClassifyTransition clasifica el paso from → to.
func ClassifyTransition(from, to entity.InvoiceStatus) TransitionKind {
	switch {
	case from == to:
		return TransitionNoop
	case IsTerminal(from):
		return TransitionUnusual
	case from == entity.InvoiceStatusPending:
		return TransitionForward
	case from == entity.InvoiceStatusOverdue && IsTerminal(to):
		return TransitionForward
	default:
		return TransitionUnusual
	}
}

// StatusChange resultado de aplicar un estado a una factura.
type StatusChange struct {
	From entity.InvoiceStatus
	To   entity.InvoiceStatus
	Kind TransitionKind
	// StalePaidAt: el estado nuevo no es paid pero la factura conserva un PaidAt previo.
	StalePaidAt bool
}

// ApplyStatus aplica el estado to sobre inv. Pasar a paid sella PaidAt = now; cualquier otro
// estado deja PaidAt como estaba. Siempre actualiza UpdatedAt y UpdatedBy.
func ApplyStatus(inv *entity.Invoice, to entity.InvoiceStatus, actorID string, now time.Time) StatusChange {
	change := StatusChange{From: inv.Status, To: to, Kind: ClassifyTransition(inv.Status, to)}
	inv.Status = to
	if to == entity.InvoiceStatusPaid {
		paidAt := now
		inv.PaidAt = &paidAt
	} else if inv.PaidAt != nil {
		change.StalePaidAt = true
	}
	inv.UpdatedAt = now
	inv.UpdatedBy = actorID
	return change
}

// EffectiveStatus estado a mostrar: una factura pending cuya fecha de vencimiento ya pasó se
// presenta como overdue. No modifica el estado almacenado. DueDate se toma como fecha calendario.
func EffectiveStatus(inv *entity.Invoice, today time.Time) entity.InvoiceStatus {
	if inv.Status != entity.InvoiceStatusPending || inv.DueDate.IsZero() {
		return inv.Status
	}
	y, m, d := inv.DueDate.Date()
	if time.Date(y, m, d, 0, 0, 0, 0, today.Location()).Before(StartOfDay(today)) {
		return entity.InvoiceStatusOverdue
	}
	return inv.Status
}
