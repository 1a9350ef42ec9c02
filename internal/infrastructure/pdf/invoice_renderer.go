// Package pdf genera la factura descargable del abono del kit satelital.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Organización + ID fiscal │  N° Factura + Fechas     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel / Email                             │
//	│  CLIENTE: Nombre + cuenta + kit + contacto                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Subtotal               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Monto original / TOTAL A PAGAR (XOF)               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Estado + QR de referencia + notas                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

const dateLayout = "02/01/2006"

// ── Renderer ──────────────────────────────────────────────────────────────────

var _ appbilling.DocumentRenderer = (*InvoiceRenderer)(nil)

// InvoiceRenderer implementa billing.DocumentRenderer usando Maroto v2.
type InvoiceRenderer struct{}

// NewInvoiceRenderer construye el renderer.
func NewInvoiceRenderer() *InvoiceRenderer { return &InvoiceRenderer{} }

// ContentType tipo MIME del documento.
func (*InvoiceRenderer) ContentType() string { return "application/pdf" }

// Extension extensión del archivo descargable.
func (*InvoiceRenderer) Extension() string { return appbilling.FormatPDF }

// Render genera el PDF y devuelve sus bytes.
func (g *InvoiceRenderer) Render(_ context.Context, in *appbilling.RenderInput) ([]byte, error) {
	if in == nil || in.Invoice == nil {
		return nil, fmt.Errorf("pdf: falta la factura")
	}
	inv := in.Invoice
	org := in.Organization

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+inv.InvoiceNumber, true).
		WithAuthor(org.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(in))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(org))
	m.AddRows(clientRow(in.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(inv)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(in)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: organización (izq) y N° factura con fechas (der).
func headerRow(in *appbilling.RenderInput) core.Row {
	inv := in.Invoice
	return row.New(22).Add(
		col.New(7).Add(
			text.New(nonEmpty(in.Organization.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID fiscal: "+nonEmpty(in.Organization.TaxID, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Emitida: "+in.IssuedAt.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Vence: "+formatDate(inv), props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
		),
	)
}

// emisorRow: membrete de la organización.
func emisorRow(org appbilling.Organization) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(org.Address, "—"),
				nonEmpty(org.Phone, "—"),
				nonEmpty(org.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// clientRow: datos del cliente. Un cliente sin emails o sin teléfonos se imprime igual.
func clientRow(c appbilling.ClientDisplay) core.Row {
	loc := strings.Join(compact(c.Location.Address, c.Location.City, c.Location.Country), ", ")
	return row.New(20).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(c.Name, "Cliente "+c.ID), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Cuenta: %s   |   Kit: %s   |   Ubicación: %s",
				nonEmpty(c.AccountName, "—"),
				nonEmpty(c.KitNumber, "—"),
				nonEmpty(loc, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New(fmt.Sprintf("Email: %s   |   Tel: %s   |   WhatsApp: %s",
				nonEmpty(strings.Join(c.Emails, ", "), "—"),
				nonEmpty(strings.Join(c.Phones, ", "), "—"),
				nonEmpty(c.WhatsApp, "—"),
			), props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea. Los precios van en la moneda del monto original si existe.
func tableDetailRows(inv *entity.Invoice) []core.Row {
	cur := itemCurrency(inv)
	result := make([]core.Row, 0, len(inv.Items))
	for _, it := range inv.Items {
		unit := decimal.NewFromFloat(it.Amount)
		subtotal := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatAmount(unit, cur),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				formatAmount(subtotal, cur),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: monto original (si existe) y total a pagar en la moneda de la factura.
func totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string, a align.Type, right float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: a,
			Color: colorPrimary, Right: right, Top: 6,
		})
	}

	original := "—"
	if inv.OriginalAmount != nil {
		original = formatAmount(decimal.NewFromFloat(inv.OriginalAmount.Amount), inv.OriginalAmount.Currency)
	}
	total := formatAmount(decimal.NewFromFloat(inv.Amount), inv.Currency)

	return row.New(14).Add(
		col.New(3),
		col.New(3).Add(
			label("Monto original:"),
			grand("TOTAL A PAGAR:", align.Right, 2),
		),
		col.New(3).Add(
			value(original),
			grand(total, align.Right, 1),
		),
		col.New(3),
	)
}

// footerRows: estado a la fecha de emisión, QR de referencia y notas.
func footerRows(in *appbilling.RenderInput) []core.Row {
	inv := in.Invoice
	status := in.EffectiveStatus
	if status == "" {
		status = inv.Status
	}
	statusColor := colorPrimary
	if status == entity.InvoiceStatusOverdue {
		statusColor = colorAlert
	}

	rows := []core.Row{
		row.New(40).Add(
			col.New(4).Add(code.NewQr(qrPayload(inv), props.Rect{
				Percent: 90,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("ESTADO: "+statusLabel(status), props.Text{
					Style: fontstyle.Bold, Size: 11, Top: 4, Left: 3, Color: statusColor,
				}),
				text.New("Referencia de pago: "+inv.InvoiceNumber, props.Text{
					Size: 8, Top: 12, Left: 3, Color: colorGray,
				}),
				text.New("Cliente: "+inv.ClientID, props.Text{
					Size: 7, Top: 17, Left: 3, Color: colorGray,
				}),
			),
		),
	}

	if inv.Notes != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+inv.Notes, props.Text{Size: 8, Color: colorGray, Top: 2}),
		)))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Abono del servicio de kit satelital. Conserve este documento como comprobante.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func itemCurrency(inv *entity.Invoice) entity.Currency {
	if inv.OriginalAmount != nil && inv.OriginalAmount.Currency != "" {
		return inv.OriginalAmount.Currency
	}
	return inv.Currency
}

func qrPayload(inv *entity.Invoice) string {
	return fmt.Sprintf("%s|%s|%s %s", inv.InvoiceNumber, inv.ClientID,
		decimal.NewFromFloat(inv.Amount).StringFixed(0), inv.Currency)
}

func statusLabel(s entity.InvoiceStatus) string {
	switch s {
	case entity.InvoiceStatusPaid:
		return "PAGADA"
	case entity.InvoiceStatusOverdue:
		return "VENCIDA"
	case entity.InvoiceStatusCancelled:
		return "ANULADA"
	default:
		return "PENDIENTE"
	}
}

func formatDate(inv *entity.Invoice) string {
	if inv.DueDate.IsZero() {
		return "—"
	}
	return inv.DueDate.Format(dateLayout)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func compact(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// formatAmount formatea con puntos de miles. XOF, NGN y RWF sin decimales; EUR con dos.
// Ej: 60000 XOF → "60.000 XOF", 72.5 EUR → "72,50 EUR"
func formatAmount(d decimal.Decimal, cur entity.Currency) string {
	places := int32(0)
	if cur == entity.CurrencyEUR {
		places = 2
	}
	s := d.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	out := formatThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return strings.TrimSpace(out + " " + string(cur))
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
