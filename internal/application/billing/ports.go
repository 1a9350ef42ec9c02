package billing

import (
	"context"
	"time"

	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// Formatos de documento soportados.
const (
	FormatPDF = "pdf"
	FormatXML = "xml"
)

// Organization membrete estático de la organización emisora.
type Organization struct {
	Name    string
	Address string
	Phone   string
	Email   string
	TaxID   string
}

// ClientDisplay datos del cliente que se imprimen en el documento.
type ClientDisplay struct {
	ID          string
	Name        string
	AccountName string
	KitNumber   string
	Phones      []string
	Emails      []string
	WhatsApp    string
	Location    entity.Location
}

// RenderInput datos completamente resueltos para generar el documento de una factura.
type RenderInput struct {
	Invoice         *entity.Invoice
	EffectiveStatus entity.InvoiceStatus
	Client          ClientDisplay
	Organization    Organization
	IssuedAt        time.Time
}

// DocumentRenderer genera la representación descargable de una factura (PDF, XML).
// Un error de render nunca invalida la factura ya persistida.
type DocumentRenderer interface {
	Render(ctx context.Context, in *RenderInput) ([]byte, error)
	ContentType() string
	Extension() string
}

// RenderedDocument último documento generado para una factura en un formato.
type RenderedDocument struct {
	InvoiceID   string
	Format      string
	Filename    string
	ContentType string
	Data        []byte
	RenderedAt  time.Time

	// InvoiceVersion UpdatedAt de la factura que se renderizó.
	InvoiceVersion time.Time
}

// DocumentCache guarda el último documento generado por factura y formato.
type DocumentCache interface {
	Get(invoiceID, format string) (*RenderedDocument, bool)
	Set(doc *RenderedDocument)
	// Evict descarta todos los formatos de la factura; no falla si no había nada.
	Evict(invoiceID string)
}

// NumberGenerator asigna el número legible de una factura nueva.
type NumberGenerator interface {
	Next(ctx context.Context, now time.Time) (string, error)
}
