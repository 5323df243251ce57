// Package validation checks employee payloads before they are persisted.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tqt95/app-react-jpa/internal/data"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate *validator.Validate

// messages maps a validation tag to a message; %s is replaced by the tag
// parameter when the tag has one.
var messages = map[string]string{
	"notblank": "is required",
	"required": "is required",
	"max":      "cannot exceed %s characters",
	"email":    "should be a valid email",
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	default:
		return !field.IsZero()
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	}
}

func message(e validator.FieldError) string {
	format, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("failed on %s", e.Tag())
	}
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, e.Param())
	}
	return format
}

// Employee returns a *data.ValidationError naming every invalid field, or
// nil when the employee can be persisted.
func Employee(employee *data.Employee) error {
	err := validate.Struct(employee)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.Wrap(err, "error while validating employee")
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, ok := fields[e.Field()]; ok {
			continue
		}
		fields[e.Field()] = message(e)
	}
	return &data.ValidationError{Fields: fields}
}
