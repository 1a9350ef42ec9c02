// Package billing contiene las reglas puras de facturación: conversión a XOF, ciclo de
// cobro mensual, formato de numeración y máquina de estados de la factura.
package billing

import (
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// Tasas por defecto hacia XOF.
var settlementRates = map[entity.Currency]decimal.Decimal{
	entity.CurrencyEUR: decimal.RequireFromString("655.957"),
	entity.CurrencyNGN: decimal.RequireFromString("0.8"),
	entity.CurrencyRWF: decimal.RequireFromString("0.6"),
	entity.CurrencyXOF: decimal.NewFromInt(1),
}

// flatRate precio de paquete negociado: un par (moneda, monto) exacto con resultado fijo.
type flatRate struct {
	currency entity.Currency
	amount   float64
	result   float64
}

// Las tarifas planas tienen prioridad sobre las tasas.
var flatRates = []flatRate{
	{currency: entity.CurrencyEUR, amount: 72, result: 60000},
	{currency: entity.CurrencyNGN, amount: 49000, result: 30000},
}

// ConvertChecked convierte amount a XOF. known es false cuando la moneda no tiene tasa:
// en ese caso el monto se devuelve sin cambios. Un monto NaN/±Inf se devuelve tal cual y un
// resultado fuera de rango sale como ±Inf; quien llama valida con entity.IsFinite.
func ConvertChecked(amount float64, currency entity.Currency) (result float64, known bool) {
	for _, fr := range flatRates {
		if fr.currency == currency && fr.amount == amount {
			return fr.result, true
		}
	}
	rate, ok := settlementRates[currency]
	if !ok {
		return amount, false
	}
	if !entity.IsFinite(amount) {
		return amount, true
	}
	return decimal.NewFromFloat(amount).Mul(rate).InexactFloat64(), true
}

// Convert convierte amount a XOF. Nunca falla: una moneda sin tasa pasa sin conversión y se
// registra un warning, ya que con la lista cerrada de monedas ese camino no debería alcanzarse.
func Convert(amount float64, currency entity.Currency) float64 {
	result, known := ConvertChecked(amount, currency)
	if !known {
		log.Warn().
			Str("currency", string(currency)).
			Float64("amount", amount).
			Msg("moneda sin tasa de conversión, se usa el monto sin convertir")
	}
	return result
}
