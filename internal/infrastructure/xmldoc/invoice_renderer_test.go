package xmldoc_test

import (
	"context"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
	"github.com/jhoicas/kitbilling/internal/infrastructure/xmldoc"
)

func TestInvoiceRenderer_EstructuraXML(t *testing.T) {
	ngn := entity.Money{Amount: 49000, Currency: entity.CurrencyNGN}
	in := &appbilling.RenderInput{
		Invoice: &entity.Invoice{
			ID:             "inv-1",
			InvoiceNumber:  "20260115-002",
			ClientID:       "cli-1",
			OriginalAmount: &ngn,
			Amount:         30000,
			Currency:       entity.CurrencyXOF,
			Items: []entity.InvoiceItem{
				{Description: "Abono", Amount: 24500, Quantity: 2},
			},
			Status:  entity.InvoiceStatusPending,
			DueDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		EffectiveStatus: entity.InvoiceStatusOverdue,
		Client:          appbilling.ClientDisplay{ID: "cli-1", Name: "Ngozi", Emails: []string{"n@example.com"}},
		Organization:    appbilling.Organization{Name: "Kit Satellite"},
		IssuedAt:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	data, err := xmldoc.NewInvoiceRenderer().Render(context.Background(), in)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	root := doc.SelectElement("Invoice")
	require.NotNil(t, root)

	assert.Equal(t, "20260115-002", root.SelectElement("Number").Text())
	status := root.SelectElement("Status")
	assert.Equal(t, "overdue", status.Text())
	assert.Equal(t, "pending", status.SelectAttrValue("stored", ""))

	line := root.FindElement("Lines/Line")
	require.NotNil(t, line)
	assert.Equal(t, "49000", line.SelectElement("LineTotal").Text())

	payable := root.FindElement("Totals/PayableAmount")
	assert.Equal(t, "30000", payable.Text())
	assert.Equal(t, "XOF", payable.SelectAttrValue("currency", ""))
	assert.Equal(t, "n@example.com", root.FindElement("Customer/Email").Text())
}

func TestInvoiceRenderer_XMLSinFactura(t *testing.T) {
	_, err := xmldoc.NewInvoiceRenderer().Render(context.Background(), nil)
	assert.Error(t, err)
}
