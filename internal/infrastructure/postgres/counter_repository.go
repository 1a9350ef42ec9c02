package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/kitbilling/internal/domain/repository"
)

var _ repository.InvoiceCounterRepository = (*CounterRepo)(nil)

// CounterRepo secuencia diaria de facturas sobre billing_invoice_counters.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador.
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Next reserva el siguiente número del día con un único INSERT ... ON CONFLICT: la fila del
// día se crea sembrada con las facturas existentes desde since, o se incrementa si ya existe.
// Dos llamadas concurrentes nunca obtienen el mismo valor.
func (r *CounterRepo) Next(ctx context.Context, dayKey string, since time.Time) (int64, error) {
	query := `
		INSERT INTO billing_invoice_counters (day_key, last_number)
		VALUES ($1, (SELECT COUNT(*) FROM billing_invoices WHERE created_at >= $2) + 1)
		ON CONFLICT (day_key) DO UPDATE
			SET last_number = billing_invoice_counters.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, dayKey, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("next invoice number %s: %w", dayKey, err)
	}
	return n, nil
}
