package dto

import (
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// DateLayout formato de fechas calendario en requests y en el roster CSV.
const DateLayout = "2006-01-02"

// InvoiceItemRequest línea de factura (precio unitario y cantidad).
type InvoiceItemRequest struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"finite,gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// Si OriginalAmount viene informado, Amount y Currency se recalculan en XOF.
type CreateInvoiceRequest struct {
	ClientID       string               `json:"clientId"`
	OriginalAmount *entity.Money        `json:"originalAmount,omitempty"`
	Amount         float64              `json:"amount" validate:"finite,gte=0"`
	Currency       entity.Currency      `json:"currency,omitempty" validate:"omitempty,currency"`
	Items          []InvoiceItemRequest `json:"items" validate:"dive"`
	Notes          string               `json:"notes,omitempty"`
	DueDate        string               `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"` // por defecto hoy + días de vencimiento
}

// UpdateInvoiceRequest parche parcial para PATCH /api/invoices/:id. Los campos nil no se tocan.
// Amount nunca se recalcula a partir de OriginalAmount en una actualización.
type UpdateInvoiceRequest struct {
	ClientID       *string               `json:"clientId,omitempty" validate:"omitempty,min=1"`
	OriginalAmount *entity.Money         `json:"originalAmount,omitempty"`
	Amount         *float64              `json:"amount,omitempty" validate:"omitempty,finite,gte=0"`
	Currency       *entity.Currency      `json:"currency,omitempty" validate:"omitempty,currency"`
	Items          *[]InvoiceItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	Notes          *string               `json:"notes,omitempty"`
	DueDate        *string               `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status         *entity.InvoiceStatus `json:"status,omitempty" validate:"omitempty,invoicestatus"`
}

// UpdateInvoiceStatusRequest body para PUT /api/invoices/:id/status.
type UpdateInvoiceStatusRequest struct {
	Status entity.InvoiceStatus `json:"status"`
}

// InvoiceResponse factura con el estado efectivo (pending vencida se muestra overdue).
type InvoiceResponse struct {
	*entity.Invoice
	EffectiveStatus entity.InvoiceStatus `json:"effectiveStatus"`
}

// BatchGenerateRequest body para POST /api/invoices/batch.
type BatchGenerateRequest struct {
	ClientIDs []string `json:"clientIds" validate:"required,min=1"`
}

// BatchOutcome resultado por cliente de una facturación masiva.
// InvoiceID puede venir informado junto con Error si la factura se creó pero el documento falló.
type BatchOutcome struct {
	ClientID      string `json:"clientId"`
	InvoiceID     string `json:"invoiceId,omitempty"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BatchResult totales de la facturación masiva.
type BatchResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Outcomes  []BatchOutcome `json:"outcomes"`
}
