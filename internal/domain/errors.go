package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
	ErrPersistence   = errors.New("error de persistencia, intente nuevamente")
	ErrRender        = errors.New("no se pudo generar el documento")
	ErrCorruptRecord = errors.New("documento almacenado con formato inválido")
	ErrDuplicate     = errors.New("registro duplicado")
)

// ValidationError indica campos requeridos ausentes o inválidos en una operación.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationError.
type ValidationError struct {
	Fields []string
}

// NewValidationError construye el error con los campos en el orden recibido.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	return ErrInvalidInput.Error() + ": campos requeridos ausentes o inválidos: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// RequireFields devuelve un ValidationError con los nombres cuyo valor está vacío, o nil.
// pairs alterna nombre y valor: RequireFields("clientId", in.ClientID, "actorId", actorID).
func RequireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return NewValidationError(missing...)
}
