package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

// Validator checks `validate` struct tags and reports failures as
// VALIDATION_ERROR app errors named by JSON field.
type Validator interface {
	Validate(obj interface{}) error
}

type validator struct {
	v *playground.Validate
}

func New() Validator {
	v := playground.New()
	v.RegisterTagNameFunc(jsonName)
	return &validator{v: v}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func (v *validator) Validate(obj interface{}) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidation("invalid request", err)
	}
	return apperrors.NewValidation(Describe(verrs), err)
}

// Describe renders field errors as "field: reason" pairs.
func Describe(verrs playground.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), reason(fe)))
	}
	return strings.Join(parts, "; ")
}

func reason(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must not exceed " + fe.Param()
	case "gtfield":
		return "must be after " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}
