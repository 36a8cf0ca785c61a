package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// ErrNilValue is returned when Struct is handed a nil pointer.
	ErrNilValue = errors.New("value cannot be nil")
)

func init() {
	validate = validator.New()
	// typed node ids look like "person:123"; an empty prefix or suffix is a data error
	_ = validate.RegisterValidation("typedid", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return false
		}
		i := strings.IndexByte(s, ':')
		if i < 0 {
			return true
		}
		return i > 0 && i < len(s)-1
	})
}

// Struct validates v against its `validate` struct tags and returns the first
// failure in a readable form.
func Struct(v any) error {
	if v == nil {
		return ErrNilValue
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Var validates a single value against a tag expression such as "gte=0".
func Var(v any, tag string) error {
	if err := validate.Var(v, tag); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "len":
			return fmt.Errorf("%s: must have exactly %s elements", field, param)
		case "latitude":
			return fmt.Errorf("%s: %v is not a latitude", field, e.Value())
		case "longitude":
			return fmt.Errorf("%s: %v is not a longitude", field, e.Value())
		case "typedid":
			return fmt.Errorf("%s: %q is not a valid node id", field, e.Value())
		case "gtefield":
			return fmt.Errorf("%s: must be at least %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
