package validators

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is a type alias for validator.Validate.
type Validate = validator.Validate

// ValidationErrors is a type alias for validator.ValidationErrors.
type ValidationErrors = validator.ValidationErrors

// FieldError is a type alias for validator.FieldError.
type FieldError = validator.FieldError

// New creates a validator that reports fields by their mapstructure key,
// so errors name the config key a user actually wrote (e.g. "log_analyzer.report_size").
func New() *Validate {
	v := validator.New()
	v.RegisterTagNameFunc(mapstructureName)
	return v
}

func mapstructureName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}
