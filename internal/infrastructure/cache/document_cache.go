// Package cache guarda en memoria el último documento generado de cada factura.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jhoicas/kitbilling/internal/application/billing"
)

// ExpiryDefault vigencia por defecto de un documento en cache.
const ExpiryDefault = 30 * time.Minute

var _ billing.DocumentCache = (*DocumentCache)(nil)

// DocumentCache cache en proceso indexado por "facturaID/formato".
type DocumentCache struct {
	c *gocache.Cache
}

// NewDocumentCache crea el cache; ttl <= 0 usa ExpiryDefault.
func NewDocumentCache(ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = ExpiryDefault
	}
	return &DocumentCache{c: gocache.New(ttl, 2*ttl)}
}

func key(invoiceID, format string) string {
	return invoiceID + "/" + format
}

// Get devuelve el documento si sigue vigente.
func (d *DocumentCache) Get(invoiceID, format string) (*billing.RenderedDocument, bool) {
	v, ok := d.c.Get(key(invoiceID, format))
	if !ok {
		return nil, false
	}
	doc, ok := v.(*billing.RenderedDocument)
	return doc, ok
}

// Set reemplaza el documento de la factura en ese formato.
func (d *DocumentCache) Set(doc *billing.RenderedDocument) {
	if doc == nil {
		return
	}
	d.c.SetDefault(key(doc.InvoiceID, doc.Format), doc)
}

// Evict descarta todos los formatos de la factura.
func (d *DocumentCache) Evict(invoiceID string) {
	prefix := invoiceID + "/"
	for k := range d.c.Items() {
		if strings.HasPrefix(k, prefix) {
			d.c.Delete(k)
		}
	}
}
