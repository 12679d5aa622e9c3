package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"tdc-backend/internal/content"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(content.Level)
		if !ok {
			return false
		}
		return value.Valid()
	})

	v.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(content.ResourceType)
		if !ok {
			return false
		}
		return value.Valid()
	})

	v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(content.Language)
		if !ok {
			return false
		}
		return value.Valid()
	})

	return &Validator{v: v}
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
