package dto

import (
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// CreateClientRequest body para POST /api/clients.
// BillingAmount es opcional: si no viene se calcula convirtiendo OriginalAmount a XOF.
type CreateClientRequest struct {
	ClientName     string               `json:"clientName"`
	AccountName    string               `json:"accountName"`
	KitNumber      string               `json:"kitNumber"`
	Location       entity.Location      `json:"location"`
	OriginalAmount entity.Money         `json:"originalAmount"`
	BillingAmount  *entity.Money        `json:"billingAmount,omitempty"`
	KitStatus      entity.KitStatus     `json:"kitStatus" validate:"omitempty,kitstatus"`
	PaymentStatus  entity.PaymentStatus `json:"paymentStatus" validate:"omitempty,paymentstatus"`
	Phones         []string             `json:"phones" validate:"min=1,dive,required"`
	Emails         []string             `json:"emails" validate:"min=1,dive,email"`
	WhatsApp       string               `json:"whatsapp,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	ActivationDate string               `json:"activationDate" validate:"omitempty,datetime=2006-01-02"`
	BillingDate    string               `json:"billingDate" validate:"required,datetime=2006-01-02"`
}

// UpdateClientRequest parche parcial para PATCH /api/clients/:id. Los campos nil no se tocan.
// Los estados se cambian por sus endpoints propios para que quede la acción específica en el historial.
type UpdateClientRequest struct {
	ClientName     *string          `json:"clientName,omitempty" validate:"omitempty,min=1"`
	AccountName    *string          `json:"accountName,omitempty"`
	KitNumber      *string          `json:"kitNumber,omitempty"`
	Location       *entity.Location `json:"location,omitempty"`
	OriginalAmount *entity.Money    `json:"originalAmount,omitempty"`
	BillingAmount  *entity.Money    `json:"billingAmount,omitempty"`
	Phones         *[]string        `json:"phones,omitempty" validate:"omitempty,min=1,dive,required"`
	Emails         *[]string        `json:"emails,omitempty" validate:"omitempty,min=1,dive,email"`
	WhatsApp       *string          `json:"whatsapp,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	ActivationDate *string          `json:"activationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BillingDate    *string          `json:"billingDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateKitStatusRequest body para PUT /api/clients/:id/kit-status.
type UpdateKitStatusRequest struct {
	Status entity.KitStatus `json:"status"`
}

// UpdatePaymentStatusRequest body para PUT /api/clients/:id/payment-status.
type UpdatePaymentStatusRequest struct {
	Status entity.PaymentStatus `json:"status"`
}

// CreateRecordRequest alta de mantenimiento, incidencia técnica o reemplazo de kit.
// Status vacío toma el estado inicial del tipo de registro.
type CreateRecordRequest struct {
	Description string `json:"description"`
	Reference   string `json:"reference,omitempty"`
	Status      string `json:"status,omitempty"`
}

// UpdateRecordStatusRequest cambio de estado de un registro asociado.
type UpdateRecordStatusRequest struct {
	Status string `json:"status"`
}

// ClientListQuery filtros de GET /api/clients.
type ClientListQuery struct {
	PageRequest
	Due string `query:"due" validate:"omitempty,oneof=today week month"`
}

// ClientResponse cliente con su próxima fecha de cobro calculada.
type ClientResponse struct {
	*entity.Client
	NextBillingDate  string `json:"nextBillingDate"`
	DaysUntilBilling int    `json:"daysUntilBilling"`
	DueWindow        string `json:"dueWindow,omitempty"`
}

// ClientListResponse página de clientes ordenada por urgencia de cobro.
type ClientListResponse struct {
	Items []*ClientResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ImportRowError fila del roster que no se pudo importar (1 = primera fila de datos).
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult totales de una importación de roster.
type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}
