package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/kitbilling/internal/application/dto"
	"github.com/jhoicas/kitbilling/internal/domain"
)

// respondError traduce los errores de dominio a status HTTP. Los errores de persistencia
// se responden con el mensaje genérico; la causa solo va al log.
func respondError(c *fiber.Ctx, err error) error {
	var (
		verr *domain.ValidationError
		aerr *authError
	)
	switch {
	case errors.As(err, &aerr):
		status := fiber.StatusUnauthorized
		if errors.Is(err, domain.ErrForbidden) {
			status = fiber.StatusForbidden
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: aerr.code, Message: aerr.msg})
	case errors.As(err, &verr):
		msg := "datos inválidos"
		if len(verr.Fields) > 0 {
			msg = "campos requeridos ausentes o inválidos: " + strings.Join(verr.Fields, ", ")
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: domain.ErrDuplicate.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: domain.ErrUnauthorized.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: domain.ErrForbidden.Error()})
	case errors.Is(err, domain.ErrRender):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "RENDER_FAILED", Message: domain.ErrRender.Error()})
	case errors.Is(err, domain.ErrCorruptRecord):
		log.Error().Err(err).Str("path", c.Path()).Msg("registro almacenado inválido")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "CORRUPT_RECORD", Message: domain.ErrCorruptRecord.Error()})
	case errors.Is(err, domain.ErrPersistence):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PERSISTENCE", Message: domain.ErrPersistence.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no clasificado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
