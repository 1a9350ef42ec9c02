// Package validator expone una única instancia de go-playground/validator con las reglas
// de los enums de facturación registradas.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/kitbilling/internal/domain"
	"github.com/jhoicas/kitbilling/internal/domain/entity"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Get devuelve el validador compartido (seguro para uso concurrente).
func Get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Los errores usan el nombre JSON del campo.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "currency", func(fl validator.FieldLevel) bool {
			return entity.Currency(fl.Field().String()).IsValid()
		})
		mustRegister(v, "kitstatus", func(fl validator.FieldLevel) bool {
			return entity.KitStatus(fl.Field().String()).IsValid()
		})
		mustRegister(v, "paymentstatus", func(fl validator.FieldLevel) bool {
			return entity.PaymentStatus(fl.Field().String()).IsValid()
		})
		mustRegister(v, "invoicestatus", func(fl validator.FieldLevel) bool {
			return entity.InvoiceStatus(fl.Field().String()).IsValid()
		})
		mustRegister(v, "finite", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			switch f.Kind() {
			case reflect.Float32, reflect.Float64:
				return entity.IsFinite(f.Float())
			}
			return true
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ValidateRequest valida un struct y traduce los fallos a *domain.ValidationError
// con la ruta JSON de cada campo (p.ej. "originalAmount.currency").
func ValidateRequest(req any) error {
	err := Get().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError(err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe.Namespace()))
	}
	return domain.NewValidationError(fields...)
}

// fieldPath quita el nombre del struct raíz: "Client.originalAmount.currency" → "originalAmount.currency".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
