package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/kitbilling/internal/domain/billing"
	"github.com/jhoicas/kitbilling/internal/domain/repository"
)

// DateSequenceNumbers numera "{YYYYMMDD}-{seq}" con un contador diario atómico en el store.
type DateSequenceNumbers struct {
	counters repository.InvoiceCounterRepository
	loc      *time.Location
}

// NewDateSequenceNumbers construye el generador; loc define dónde empieza el día.
func NewDateSequenceNumbers(counters repository.InvoiceCounterRepository, loc *time.Location) *DateSequenceNumbers {
	if loc == nil {
		loc = time.UTC
	}
	return &DateSequenceNumbers{counters: counters, loc: loc}
}

// Next reserva el siguiente número del día local de now.
func (g *DateSequenceNumbers) Next(ctx context.Context, now time.Time) (string, error) {
	local := now.In(g.loc)
	seq, err := g.counters.Next(ctx, billing.DayKey(local), billing.StartOfDay(local))
	if err != nil {
		return "", fmt.Errorf("reservar secuencia %s: %w", billing.DayKey(local), err)
	}
	return billing.DateSequenceNumber(local, seq), nil
}

// OpaqueNumbers numera "INV-{timestamp}-{aleatorio}" sin consultar el store.
type OpaqueNumbers struct{}

// Next genera un número opaco.
func (OpaqueNumbers) Next(_ context.Context, now time.Time) (string, error) {
	return billing.OpaqueNumber(now), nil
}

// NewNumberGenerator elige la estrategia configurada.
func NewNumberGenerator(scheme billing.NumberingScheme, counters repository.InvoiceCounterRepository, loc *time.Location) (NumberGenerator, error) {
	switch scheme {
	case billing.NumberingDateSequence, "":
		return NewDateSequenceNumbers(counters, loc), nil
	case billing.NumberingOpaque:
		return OpaqueNumbers{}, nil
	}
	return nil, fmt.Errorf("esquema de numeración desconocido: %q", scheme)
}
