package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// PriceRegex accepts a positive decimal with at most two fraction digits.
	PriceRegex = regexp.MustCompile(`^\d{1,10}(\.\d{1,2})?$`)
)

// Validator validates request structs.
type Validator interface {
	// Validate validates the given struct
	Validate(s any) error
}

// DefaultValidator is the go-playground backed Validator.
type DefaultValidator struct {
	v *validator.Validate
}

// NewDefaultValidator creates a validator with the custom tags registered and
// field errors reported under their JSON names.
func NewDefaultValidator() (*DefaultValidator, error) {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = fld.Tag.Get("query")
		}
		return name
	})

	if err := v.RegisterValidation("price", validatePrice); err != nil {
		return nil, fmt.Errorf("register price validator: %w", err)
	}

	return &DefaultValidator{v: v}, nil
}

// Validate runs the struct's validate tags.
func (v DefaultValidator) Validate(s any) error {
	return v.v.Struct(s)
}

// IsValidationError checks if the given error is a validation error
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

// Fields maps each failing field to a readable message. It returns nil when
// err is not a validation error.
func Fields(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = ValidationErrorMessage(fe)
	}
	return out
}

// ValidationErrorMessage renders a field error for clients.
func ValidationErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "price":
		return "must be a decimal with at most 10 integer and 2 fraction digits"
	default:
		return "is invalid"
	}
}

func validatePrice(fl validator.FieldLevel) bool {
	return PriceRegex.MatchString(fl.Field().String())
}
