package entity

import "math"

// Currency moneda de un monto (código ISO 4217).
type Currency string

// Monedas soportadas. XOF es la moneda de liquidación: toda factura se expresa finalmente en XOF.
const (
	CurrencyXOF Currency = "XOF"
	CurrencyEUR Currency = "EUR"
	CurrencyNGN Currency = "NGN"
	CurrencyRWF Currency = "RWF"
)

// SettlementCurrency moneda en la que se liquidan todas las facturas.
const SettlementCurrency = CurrencyXOF

// Currencies lista cerrada de monedas aceptadas.
var Currencies = []Currency{CurrencyXOF, CurrencyEUR, CurrencyNGN, CurrencyRWF}

// IsValid indica si la moneda pertenece a la lista cerrada.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyXOF, CurrencyEUR, CurrencyNGN, CurrencyRWF:
		return true
	}
	return false
}

// Money monto con moneda. El monto es float64: la precisión financiera está fuera de alcance
// y se conserva el modelo de punto flotante de los documentos existentes.
type Money struct {
	Amount   float64  `json:"amount" firestore:"amount" validate:"finite,gte=0"`
	Currency Currency `json:"currency" firestore:"currency" validate:"required,currency"`
}

// XOF construye un monto en la moneda de liquidación.
func XOF(amount float64) Money {
	return Money{Amount: amount, Currency: CurrencyXOF}
}

// IsFinite indica si v es un monto representable (ni NaN ni ±Inf).
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
