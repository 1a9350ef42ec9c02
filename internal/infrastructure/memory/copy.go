package memory

import (
	"slices"
	"strings"

	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

func copyClient(c *entity.Client) *entity.Client {
	if c == nil {
		return nil
	}
	out := *c
	out.Phones = slices.Clone(c.Phones)
	out.Emails = slices.Clone(c.Emails)
	out.MaintenanceRecords = copyRecords(c.MaintenanceRecords)
	out.TechnicalIssues = copyRecords(c.TechnicalIssues)
	out.KitReplacements = copyRecords(c.KitReplacements)
	out.History = slices.Clone(c.History)
	return &out
}

func copyRecords(in []entity.ServiceRecord) []entity.ServiceRecord {
	if in == nil {
		return nil
	}
	out := make([]entity.ServiceRecord, len(in))
	for i, r := range in {
		out[i] = r
		if r.ClosedAt != nil {
			closed := *r.ClosedAt
			out[i].ClosedAt = &closed
		}
	}
	return out
}

func copyInvoice(inv *entity.Invoice) *entity.Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	if inv.OriginalAmount != nil {
		original := *inv.OriginalAmount
		out.OriginalAmount = &original
	}
	if inv.PaidAt != nil {
		paid := *inv.PaidAt
		out.PaidAt = &paid
	}
	out.Items = slices.Clone(inv.Items)
	return &out
}

// sortNewestFirst ordena por createdAt descendente; a igual fecha, por número.
func sortNewestFirst(list []*entity.Invoice) {
	slices.SortFunc(list, func(a, b *entity.Invoice) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.InvoiceNumber, a.InvoiceNumber)
	})
}
