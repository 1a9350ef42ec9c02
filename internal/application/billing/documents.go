package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/billing"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// GenerateDocument genera (o devuelve del cache) el documento descargable de la factura.
// Solo se reutiliza un documento renderizado desde la versión actual de la factura.
// Un fallo de render se reporta como domain.ErrRender y no modifica la factura.
func (uc *InvoiceUseCase) GenerateDocument(ctx context.Context, invoiceID, format string) (*RenderedDocument, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	if err := domain.RequireFields("invoiceId", invoiceID); err != nil {
		return nil, err
	}
	renderer, ok := uc.renderers[format]
	if !ok {
		return nil, domain.NewValidationError("format")
	}

	inv, err := uc.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if doc, ok := uc.cache.Get(invoiceID, format); ok && doc.InvoiceVersion.Equal(inv.UpdatedAt) {
		return doc, nil
	}
	return uc.render(ctx, inv, format, renderer)
}

func (uc *InvoiceUseCase) render(ctx context.Context, inv *entity.Invoice, format string, renderer DocumentRenderer) (*RenderedDocument, error) {
	client, err := uc.clientRepo.GetByID(ctx, inv.ClientID)
	if err != nil {
		return nil, uc.persistenceError("obtener cliente", err)
	}
	display := ClientDisplay{ID: inv.ClientID}
	if client != nil {
		display = ClientDisplay{
			ID:          client.ID,
			Name:        client.ClientName,
			AccountName: client.AccountName,
			KitNumber:   client.KitNumber,
			Phones:      client.Phones,
			Emails:      client.Emails,
			WhatsApp:    client.WhatsApp,
			Location:    client.Location,
		}
	} else {
		uc.log.Warn().Str("invoice_id", inv.ID).Str("client_id", inv.ClientID).Msg("cliente de la factura no encontrado, documento sin datos del cliente")
	}

	now := uc.now()
	data, err := renderer.Render(ctx, &RenderInput{
		Invoice:         inv,
		EffectiveStatus: billing.EffectiveStatus(inv, uc.today()),
		Client:          display,
		Organization:    uc.cfg.Organization,
		IssuedAt:        now,
	})
	if err != nil {
		uc.log.Error().Err(err).Str("invoice_id", inv.ID).Str("format", format).Msg("error generando documento")
		return nil, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	doc := &RenderedDocument{
		InvoiceID:      inv.ID,
		Format:         format,
		Filename:       fmt.Sprintf("factura_%s.%s", inv.InvoiceNumber, renderer.Extension()),
		ContentType:    renderer.ContentType(),
		Data:           data,
		RenderedAt:     now,
		InvoiceVersion: inv.UpdatedAt,
	}
	uc.cache.Set(doc)
	return doc, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// noCache se usa cuando no hay cache configurado.
type noCache struct{}

func (noCache) Get(string, string) (*RenderedDocument, bool) { return nil, false }
func (noCache) Set(*RenderedDocument)                         {}
func (noCache) Evict(string)                                  {}
