// Package xmldoc genera la representación XML de una factura para integraciones contables.
package xmldoc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/kitbilling/internal/application/billing"
)

// Namespace del documento.
const nsInvoice = "urn:kitbilling:invoice:1"

const dateLayout = "2006-01-02"

var _ appbilling.DocumentRenderer = (*InvoiceRenderer)(nil)

// InvoiceRenderer implementa billing.DocumentRenderer con etree.
type InvoiceRenderer struct{}

// NewInvoiceRenderer construye el renderer.
func NewInvoiceRenderer() *InvoiceRenderer { return &InvoiceRenderer{} }

// ContentType tipo MIME del documento.
func (*InvoiceRenderer) ContentType() string { return "application/xml" }

// Extension extensión del archivo descargable.
func (*InvoiceRenderer) Extension() string { return appbilling.FormatXML }

// Render construye el árbol <Invoice> y lo serializa indentado.
func (r *InvoiceRenderer) Render(_ context.Context, in *appbilling.RenderInput) ([]byte, error) {
	if in == nil || in.Invoice == nil {
		return nil, fmt.Errorf("xml: falta la factura")
	}
	inv := in.Invoice

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", nsInvoice)
	root.CreateAttr("id", inv.ID)

	root.CreateElement("Number").SetText(inv.InvoiceNumber)
	root.CreateElement("IssueDate").SetText(in.IssuedAt.Format(dateLayout))
	if !inv.DueDate.IsZero() {
		root.CreateElement("DueDate").SetText(inv.DueDate.Format(dateLayout))
	}
	status := in.EffectiveStatus
	if status == "" {
		status = inv.Status
	}
	st := root.CreateElement("Status")
	st.CreateAttr("stored", string(inv.Status))
	st.SetText(string(status))
	if inv.PaidAt != nil {
		root.CreateElement("PaidAt").SetText(inv.PaidAt.UTC().Format("2006-01-02T15:04:05Z"))
	}

	org := root.CreateElement("Supplier")
	org.CreateElement("Name").SetText(in.Organization.Name)
	addOptional(org, "TaxID", in.Organization.TaxID)
	addOptional(org, "Address", in.Organization.Address)
	addOptional(org, "Phone", in.Organization.Phone)
	addOptional(org, "Email", in.Organization.Email)

	c := in.Client
	cust := root.CreateElement("Customer")
	cust.CreateAttr("id", c.ID)
	addOptional(cust, "Name", c.Name)
	addOptional(cust, "AccountName", c.AccountName)
	addOptional(cust, "KitNumber", c.KitNumber)
	for _, p := range c.Phones {
		cust.CreateElement("Phone").SetText(p)
	}
	for _, e := range c.Emails {
		cust.CreateElement("Email").SetText(e)
	}
	addOptional(cust, "WhatsApp", c.WhatsApp)
	if c.Location.City != "" || c.Location.Country != "" || c.Location.Address != "" {
		loc := cust.CreateElement("Location")
		addOptional(loc, "Address", c.Location.Address)
		addOptional(loc, "City", c.Location.City)
		addOptional(loc, "Country", c.Location.Country)
	}

	lines := root.CreateElement("Lines")
	for i, it := range inv.Items {
		unit := decimal.NewFromFloat(it.Amount)
		ln := lines.CreateElement("Line")
		ln.CreateAttr("n", strconv.Itoa(i+1))
		ln.CreateElement("Description").SetText(it.Description)
		ln.CreateElement("Quantity").SetText(strconv.Itoa(it.Quantity))
		ln.CreateElement("UnitPrice").SetText(unit.String())
		ln.CreateElement("LineTotal").SetText(unit.Mul(decimal.NewFromInt(int64(it.Quantity))).String())
	}

	totals := root.CreateElement("Totals")
	if inv.OriginalAmount != nil {
		o := totals.CreateElement("OriginalAmount")
		o.CreateAttr("currency", string(inv.OriginalAmount.Currency))
		o.SetText(decimal.NewFromFloat(inv.OriginalAmount.Amount).String())
	}
	amt := totals.CreateElement("PayableAmount")
	amt.CreateAttr("currency", string(inv.Currency))
	amt.SetText(decimal.NewFromFloat(inv.Amount).String())

	addOptional(root, "Notes", inv.Notes)

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xml: serializar: %w", err)
	}
	return out, nil
}

func addOptional(parent *etree.Element, tag, value string) {
	if value != "" {
		parent.CreateElement(tag).SetText(value)
	}
}
