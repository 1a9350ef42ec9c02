// Package roster serializa el roster de clientes en CSV.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	appbilling "github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/internal/application/dto"
)

var _ appbilling.RosterCodec = (*CSVCodec)(nil)

// CSVCodec roster en CSV con cabecera. La salida siempre es UTF-8; la entrada puede venir en
// ISO-8859-1 (hojas exportadas desde Excel en Windows).
type CSVCodec struct {
	Latin1 bool
	Comma  rune // ',' por defecto
}

// NewCSVCodec codec UTF-8 separado por comas.
func NewCSVCodec() *CSVCodec {
	return &CSVCodec{Comma: ','}
}

func (c *CSVCodec) comma() rune {
	if c.Comma == 0 {
		return ','
	}
	return c.Comma
}

// Encode escribe la cabecera y una fila por cliente.
func (c *CSVCodec) Encode(w io.Writer, rows []*dto.RosterRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = c.comma()
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("roster csv: escribir: %w", err)
	}
	return nil
}

// Decode lee todas las filas. Las columnas desconocidas se ignoran y las faltantes quedan vacías;
// un archivo vacío no es error.
func (c *CSVCodec) Decode(r io.Reader) ([]*dto.RosterRow, error) {
	var dec transform.Transformer = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if c.Latin1 {
		dec = charmap.ISO8859_1.NewDecoder()
	}
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.Comma = c.comma()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows []*dto.RosterRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("roster csv: leer: %w", err)
	}
	return rows, nil
}
