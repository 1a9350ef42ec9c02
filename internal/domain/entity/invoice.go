package entity

import "time"

// InvoiceStatus estado de una factura.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending" // estado inicial
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid indica si el estado es conocido.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// InvoiceItem línea de factura. Amount es precio unitario en la moneda de OriginalAmount
// cuando existe, si no en Currency.
type InvoiceItem struct {
	Description string  `json:"description" firestore:"description"`
	Amount      float64 `json:"amount" firestore:"amount" validate:"finite"`
	Quantity    int     `json:"quantity" firestore:"quantity"`
}

// Invoice factura emitida a un cliente.
type Invoice struct {
	ID            string `json:"id" firestore:"-" validate:"required"`
	InvoiceNumber string `json:"invoiceNumber" firestore:"invoiceNumber" validate:"required"`
	ClientID      string `json:"clientId" firestore:"clientId" validate:"required"`

	// OriginalAmount es la fuente de verdad en la moneda del contrato; Amount se deriva de él al crear.
	OriginalAmount *Money        `json:"originalAmount,omitempty" firestore:"originalAmount"`
	Amount         float64       `json:"amount" firestore:"amount" validate:"finite"`
	Currency       Currency      `json:"currency" firestore:"currency" validate:"required,currency"`
	Items          []InvoiceItem `json:"items" firestore:"items" validate:"dive"`
	Notes          string        `json:"notes,omitempty" firestore:"notes"`

	Status  InvoiceStatus `json:"status" firestore:"status" validate:"required,invoicestatus"`
	DueDate time.Time     `json:"dueDate" firestore:"dueDate"`
	PaidAt  *time.Time    `json:"paidAt,omitempty" firestore:"paidAt"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
	CreatedBy string    `json:"createdBy" firestore:"createdBy"`
	UpdatedBy string    `json:"updatedBy" firestore:"updatedBy"`
}
