package billing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/kitbilling/internal/domain/billing"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Conversión a XOF: tarifas planas antes que tasas, moneda desconocida intacta.
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_TarifasPlanas(t *testing.T) {
	assert.Equal(t, 60000.0, billing.Convert(72, entity.CurrencyEUR))
	assert.Equal(t, 30000.0, billing.Convert(49000, entity.CurrencyNGN))
}

func TestConvert_Tasas(t *testing.T) {
	cases := []struct {
		name     string
		amount   float64
		currency entity.Currency
		want     float64
	}{
		{"EUR", 100, entity.CurrencyEUR, 65595.7},
		{"EUR cerca de la tarifa plana", 73, entity.CurrencyEUR, 47884.861},
		{"NGN", 1000, entity.CurrencyNGN, 800},
		{"RWF", 100, entity.CurrencyRWF, 60},
		{"XOF identidad", 100, entity.CurrencyXOF, 100},
		{"cero", 0, entity.CurrencyEUR, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, billing.Convert(tc.amount, tc.currency), 1e-9)
		})
	}
}

func TestConvert_MonedaDesconocidaSinCambios(t *testing.T) {
	got, known := billing.ConvertChecked(123.45, entity.Currency("USD"))
	assert.False(t, known)
	assert.Equal(t, 123.45, got)

	assert.Equal(t, 123.45, billing.Convert(123.45, entity.Currency("USD")))
}

func TestConvert_XOFEsIdentidadParaCualquierMonto(t *testing.T) {
	for _, amount := range []float64{0, 1, 72, 49000, 12345.678} {
		assert.Equal(t, amount, billing.Convert(amount, entity.CurrencyXOF))
	}
}

func TestConvertChecked_MontoNoFinitoNoEntraEnDecimal(t *testing.T) {
	assert.NotPanics(t, func() {
		got, known := billing.ConvertChecked(math.Inf(1), entity.CurrencyEUR)
		assert.True(t, known)
		assert.True(t, math.IsInf(got, 1))

		got, _ = billing.ConvertChecked(math.NaN(), entity.CurrencyNGN)
		assert.True(t, math.IsNaN(got))
	})

	got, _ := billing.ConvertChecked(1e308, entity.CurrencyEUR)
	assert.False(t, entity.IsFinite(got))
}
