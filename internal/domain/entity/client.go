package entity

import "time"

// KitStatus estado operativo del kit del cliente.
type KitStatus string

const (
	KitStatusActive     KitStatus = "active"
	KitStatusInactive   KitStatus = "inactive"
	KitStatusSuspended  KitStatus = "suspended"
	KitStatusRestricted KitStatus = "restricted"
)

// IsValid indica si el estado de kit es conocido.
func (s KitStatus) IsValid() bool {
	switch s {
	case KitStatusActive, KitStatusInactive, KitStatusSuspended, KitStatusRestricted:
		return true
	}
	return false
}

// PaymentStatus estado de pago del abono del cliente.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusLate    PaymentStatus = "late"
)

// IsValid indica si el estado de pago es conocido.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPending, PaymentStatusLate:
		return true
	}
	return false
}

// Acciones del historial del cliente.
const (
	HistoryActionCreate               = "CREATE"
	HistoryActionUpdate               = "UPDATE"
	HistoryActionUpdateKitStatus      = "UPDATE_KIT_STATUS"
	HistoryActionUpdatePaymentStatus  = "UPDATE_PAYMENT_STATUS"
	HistoryActionAddMaintenance       = "ADD_MAINTENANCE"
	HistoryActionUpdateMaintenance    = "UPDATE_MAINTENANCE"
	HistoryActionAddTechnicalIssue    = "ADD_TECHNICAL_ISSUE"
	HistoryActionUpdateTechnicalIssue = "UPDATE_TECHNICAL_ISSUE"
	HistoryActionAddKitReplacement    = "ADD_KIT_REPLACEMENT"
	HistoryActionUpdateKitReplacement = "UPDATE_KIT_REPLACEMENT"
)

// HistoryEntry entrada del historial de auditoría. Solo se agregan al final, nunca se editan.
// ID distingue dos entradas con el mismo contenido (ArrayUnion de Firestore descarta repetidos).
type HistoryEntry struct {
	ID          string    `json:"id,omitempty" firestore:"id"`
	Timestamp   time.Time `json:"timestamp" firestore:"timestamp" validate:"required"`
	Action      string    `json:"action" firestore:"action" validate:"required"`
	PerformedBy string    `json:"performedBy" firestore:"performedBy" validate:"required"`
	Details     string    `json:"details" firestore:"details"`
}

// Location ubicación de instalación del kit.
type Location struct {
	Address     string `json:"address" firestore:"address"`
	City        string `json:"city" firestore:"city"`
	Country     string `json:"country" firestore:"country"`
	Description string `json:"description" firestore:"description"`
}

// RecordKind tipo de registro asociado al cliente (mantenimiento, incidencia, reemplazo de kit).
type RecordKind string

const (
	RecordKindMaintenance    RecordKind = "maintenance"
	RecordKindTechnicalIssue RecordKind = "technical_issue"
	RecordKindKitReplacement RecordKind = "kit_replacement"
)

// Estados por tipo de registro.
const (
	MaintenanceScheduled  = "scheduled"
	MaintenanceInProgress = "in_progress"
	MaintenanceCompleted  = "completed"
	MaintenanceCancelled  = "cancelled"

	IssueOpen       = "open"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
	IssueClosed     = "closed"

	ReplacementRequested = "requested"
	ReplacementInTransit = "in_transit"
	ReplacementCompleted = "completed"
	ReplacementCancelled = "cancelled"
)

// ServiceRecord registro asociado al cliente. Mantenimientos, incidencias técnicas y reemplazos
// de kit comparten estructura; Kind decide qué estados son válidos.
type ServiceRecord struct {
	ID          string     `json:"id" firestore:"id" validate:"required"`
	Kind        RecordKind `json:"kind" firestore:"kind" validate:"required"`
	Description string     `json:"description" firestore:"description"`
	Reference   string     `json:"reference,omitempty" firestore:"reference"` // p.ej. serial del kit nuevo
	Status      string     `json:"status" firestore:"status" validate:"required"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" firestore:"updatedAt"`
	ClosedAt    *time.Time `json:"closedAt,omitempty" firestore:"closedAt"`
}

// Client cuenta de suscriptor/revendedor del kit.
type Client struct {
	ID          string   `json:"id" firestore:"-" validate:"required"`
	ClientName  string   `json:"clientName" firestore:"clientName" validate:"required"`
	AccountName string   `json:"accountName" firestore:"accountName"`
	KitNumber   string   `json:"kitNumber" firestore:"kitNumber"`
	Location    Location `json:"location" firestore:"location"`

	// OriginalAmount monto pactado en la moneda del contrato; BillingAmount siempre en XOF.
	OriginalAmount Money         `json:"originalAmount" firestore:"originalAmount"`
	BillingAmount  Money         `json:"billingAmount" firestore:"billingAmount"`
	KitStatus      KitStatus     `json:"kitStatus" firestore:"kitStatus" validate:"required,kitstatus"`
	PaymentStatus  PaymentStatus `json:"paymentStatus" firestore:"paymentStatus" validate:"required,paymentstatus"`

	Phones   []string `json:"phones" firestore:"phones"`
	Emails   []string `json:"emails" firestore:"emails"`
	WhatsApp string   `json:"whatsapp,omitempty" firestore:"whatsapp"`
	Notes    string   `json:"notes,omitempty" firestore:"notes"`

	ActivationDate time.Time `json:"activationDate" firestore:"activationDate"`
	BillingDate    time.Time `json:"billingDate" firestore:"billingDate" validate:"required"`

	MaintenanceRecords []ServiceRecord `json:"maintenanceRecords" firestore:"maintenanceRecords" validate:"dive"`
	TechnicalIssues    []ServiceRecord `json:"technicalIssues" firestore:"technicalIssues" validate:"dive"`
	KitReplacements    []ServiceRecord `json:"kitReplacements" firestore:"kitReplacements" validate:"dive"`

	History []HistoryEntry `json:"history" firestore:"history" validate:"dive"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
	CreatedBy string    `json:"createdBy" firestore:"createdBy"`
	UpdatedBy string    `json:"updatedBy" firestore:"updatedBy"`
}

// Records devuelve el slice de registros del tipo indicado.
func (c *Client) Records(kind RecordKind) []ServiceRecord {
	switch kind {
	case RecordKindMaintenance:
		return c.MaintenanceRecords
	case RecordKindTechnicalIssue:
		return c.TechnicalIssues
	case RecordKindKitReplacement:
		return c.KitReplacements
	}
	return nil
}

// SetRecords reemplaza el slice de registros del tipo indicado.
func (c *Client) SetRecords(kind RecordKind, records []ServiceRecord) {
	switch kind {
	case RecordKindMaintenance:
		c.MaintenanceRecords = records
	case RecordKindTechnicalIssue:
		c.TechnicalIssues = records
	case RecordKindKitReplacement:
		c.KitReplacements = records
	}
}
