package billing

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// NumberingScheme estrategia de numeración de facturas.
type NumberingScheme string

const (
	// NumberingDateSequence "{YYYYMMDD}-{seq:03d}", secuencia diaria.
	NumberingDateSequence NumberingScheme = "date_sequence"
	// NumberingOpaque "INV-{timestamp base36}-{3 chars base36}", en mayúsculas.
	NumberingOpaque NumberingScheme = "opaque"
)

// IsValid indica si el esquema es conocido.
func (s NumberingScheme) IsValid() bool {
	return s == NumberingDateSequence || s == NumberingOpaque
}

// DayKey clave de la secuencia diaria ("20240131").
func DayKey(day time.Time) string {
	return day.Format("20060102")
}

// DateSequenceNumber formatea el número de factura de la secuencia diaria.
// La secuencia se rellena a 3 dígitos; a partir de 1000 simplemente crece.
func DateSequenceNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%03d", DayKey(day), seq)
}

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// OpaqueNumber formatea un número opaco a partir del instante (milisegundos en base 36)
// y un sufijo aleatorio de 3 caracteres en base 36.
func OpaqueNumber(now time.Time) string {
	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = base36Digits[rand.IntN(len(base36Digits))]
	}
	return strings.ToUpper("INV-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + string(suffix))
}
