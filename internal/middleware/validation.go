package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationConfig represents validation configuration
type ValidationConfig struct {
	CustomValidators map[string]validator.Func
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{}
}

// ConfigureValidation installs JSON field naming and custom tags on gin's
// binding engine so bind errors name fields the way clients send them.
func ConfigureValidation(config ValidationConfig) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}

	for tag, fn := range config.CustomValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register validator %q: %w", tag, err)
		}
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}
