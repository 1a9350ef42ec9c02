package http

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kitbilling/internal/application/billing"
	"github.com/jhoicas/kitbilling/internal/application/dto"
)

// RosterHandler importación y exportación CSV de clientes.
type RosterHandler struct {
	uc *billing.RosterUseCase
}

// NewRosterHandler construye el handler.
func NewRosterHandler(uc *billing.RosterUseCase) *RosterHandler {
	return &RosterHandler{uc: uc}
}

// Export godoc
// @Summary      Exportar roster de clientes (CSV)
// @Tags         roster
// @Security     Bearer
// @Produce      text/csv
// @Success      200
// @Router       /api/clients/export [get]
func (h *RosterHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	n, err := h.uc.Export(c.UserContext(), &buf)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="clientes_`+time.Now().Format("20060102")+`.csv"`)
	c.Set("X-Total-Count", strconv.Itoa(n))
	return c.Send(buf.Bytes())
}

// Import godoc
// @Summary      Importar roster de clientes (CSV)
// @Description  Acepta multipart con el campo "file" o el CSV como cuerpo. Best-effort por fila.
// @Tags         roster
// @Security     Bearer
// @Accept       text/csv
// @Accept       multipart/form-data
// @Produce      json
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/clients/import [post]
func (h *RosterHandler) Import(c *fiber.Ctx) error {
	var r io.Reader = bytes.NewReader(c.Body())
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"})
		}
		defer f.Close()
		r = f
	}
	out, err := h.uc.Import(c.UserContext(), r, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
