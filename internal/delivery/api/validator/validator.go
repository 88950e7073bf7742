// Package validator binds go-playground/validator to echo.
package validator

import (
	"strings"

	"greenpoints/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

// RequestValidator implements echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// "role" accepts the canonical role names and their aliases.
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := entity.ParseRole(fl.Field().String())

		return ok
	})

	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i any) error {
	return rv.validate.Struct(i)
}

// FieldErrors flattens validation errors into field -> failed tag.
func FieldErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}

	return fields
}
