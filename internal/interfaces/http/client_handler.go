package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

// recordKinds segmento de ruta → tipo de registro asociado.
var recordKinds = map[string]entity.RecordKind{
	"maintenance":      entity.RecordKindMaintenance,
	"technical-issues": entity.RecordKindTechnicalIssue,
	"kit-replacements": entity.RecordKindKitReplacement,
}

// ClientHandler maneja las peticiones HTTP de clientes (protegido).
type ClientHandler struct {
	uc       *billing.ClientUseCase
	invoices *billing.InvoiceUseCase
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *billing.ClientUseCase, invoices *billing.InvoiceUseCase) *ClientHandler {
	return &ClientHandler{uc: uc, invoices: invoices}
}

// Create godoc
// @Summary      Crear cliente
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateClientRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.ClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener cliente por ID
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.ClientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar clientes por urgencia de cobro
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        due     query  string  false  "today | week | month"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {object}  dto.ClientListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/clients [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	q := dto.ClientListQuery{
		PageRequest: dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
		Due:         c.Query("due"),
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar cliente (parcial)
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del cliente"
// @Param        body  body  dto.UpdateClientRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.ClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [patch]
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateKitStatus godoc
// @Summary      Cambiar estado del kit
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del cliente"
// @Param        body  body  dto.UpdateKitStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.ClientResponse
// @Router       /api/clients/{id}/kit-status [put]
func (h *ClientHandler) UpdateKitStatus(c *fiber.Ctx) error {
	var in dto.UpdateKitStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateKitStatus(c.UserContext(), c.Params("id"), in.Status, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdatePaymentStatus godoc
// @Summary      Cambiar estado de pago
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID del cliente"
// @Param        body  body  dto.UpdatePaymentStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.ClientResponse
// @Router       /api/clients/{id}/payment-status [put]
func (h *ClientHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	var in dto.UpdatePaymentStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdatePaymentStatus(c.UserContext(), c.Params("id"), in.Status, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddRecord godoc
// @Summary      Registrar mantenimiento, incidencia técnica o reemplazo de kit
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del cliente"
// @Param        kind  path  string                   true  "maintenance | technical-issues | kit-replacements"
// @Param        body  body  dto.CreateRecordRequest  true  "Registro"
// @Success      201   {object}  dto.ClientResponse
// @Router       /api/clients/{id}/{kind} [post]
func (h *ClientHandler) AddRecord(c *fiber.Ctx) error {
	kind, ok := recordKinds[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tipo de registro desconocido"})
	}
	var in dto.CreateRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx, id, actor := c.UserContext(), c.Params("id"), GetUserID(c)

	var (
		out *dto.ClientResponse
		err error
	)
	switch kind {
	case entity.RecordKindMaintenance:
		out, err = h.uc.AddMaintenanceRecord(ctx, id, in, actor)
	case entity.RecordKindTechnicalIssue:
		out, err = h.uc.AddTechnicalIssue(ctx, id, in, actor)
	default:
		out, err = h.uc.AddKitReplacement(ctx, id, in, actor)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateRecordStatus godoc
// @Summary      Cambiar estado de un registro asociado
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id        path  string                         true  "ID del cliente"
// @Param        kind      path  string                         true  "maintenance | technical-issues | kit-replacements"
// @Param        recordId  path  string                         true  "ID del registro"
// @Param        body      body  dto.UpdateRecordStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.ClientResponse
// @Router       /api/clients/{id}/{kind}/{recordId}/status [put]
func (h *ClientHandler) UpdateRecordStatus(c *fiber.Ctx) error {
	kind, ok := recordKinds[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tipo de registro desconocido"})
	}
	var in dto.UpdateRecordStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateRecordStatus(c.UserContext(), c.Params("id"), kind, c.Params("recordId"), in.Status, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListInvoices godoc
// @Summary      Facturas del cliente (la más reciente primero)
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {array}   dto.InvoiceResponse
// @Router       /api/clients/{id}/invoices [get]
func (h *ClientHandler) ListInvoices(c *fiber.Ctx) error {
	out, err := h.invoices.ListForClient(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
