package validator

import (
	"fmt"

	"github.com/jhoicas/kitbilling/internal/domain"
)

// ValidateStored valida un documento leído del store. Un documento que no cumple el
// esquema se reporta como domain.ErrCorruptRecord en lugar de propagarse a la lógica.
func ValidateStored(kind, id string, doc any) error {
	if err := Get().Struct(doc); err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrCorruptRecord, kind, id, err)
	}
	return nil
}
