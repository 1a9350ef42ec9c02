package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/internal/infrastructure/cache"
)

func doc(invoiceID, format string) *billing.RenderedDocument {
	return &billing.RenderedDocument{InvoiceID: invoiceID, Format: format, Data: []byte(format)}
}

func TestDocumentCache_GuardaYRecupera(t *testing.T) {
	c := cache.NewDocumentCache(time.Minute)
	c.Set(doc("inv-1", billing.FormatPDF))

	got, ok := c.Get("inv-1", billing.FormatPDF)
	require.True(t, ok)
	assert.Equal(t, []byte("pdf"), got.Data)

	_, ok = c.Get("inv-1", billing.FormatXML)
	assert.False(t, ok)
}

func TestDocumentCache_EvictBorraTodosLosFormatos(t *testing.T) {
	c := cache.NewDocumentCache(0)
	c.Set(doc("inv-1", billing.FormatPDF))
	c.Set(doc("inv-1", billing.FormatXML))
	c.Set(doc("inv-10", billing.FormatPDF))

	c.Evict("inv-1")

	_, ok := c.Get("inv-1", billing.FormatPDF)
	assert.False(t, ok)
	_, ok = c.Get("inv-1", billing.FormatXML)
	assert.False(t, ok)
	_, ok = c.Get("inv-10", billing.FormatPDF)
	assert.True(t, ok, "el prefijo no debe alcanzar otras facturas")
}

func TestDocumentCache_EvictSinEntradasNoFalla(t *testing.T) {
	c := cache.NewDocumentCache(time.Minute)
	assert.NotPanics(t, func() { c.Evict("nada") })
	c.Set(nil)
}
