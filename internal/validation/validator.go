// Package validation checks request payloads and renders field-keyed errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

var indexPattern = regexp.MustCompile(`\[[^\]]*\]`)

// Validator wraps go-playground/validator with the API's message catalog.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

// New builds a validator that reports fields by their json names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v, messages: defaultMessages()}
}

// RegisterStructRule attaches a struct-level rule for the given types.
func (v *Validator) RegisterStructRule(fn validator.StructLevelFunc, types ...interface{}) {
	v.validate.RegisterStructValidation(fn, types...)
}

// Struct validates s and returns a 422 DomainError listing one message per field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInternalError(err)
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		if _, seen := details[field]; seen {
			continue
		}
		details[field] = v.message(fe)
	}
	return apperrors.NewValidationError(details)
}

func (v *Validator) message(fe validator.FieldError) string {
	keys := []string{
		indexPattern.ReplaceAllString(fe.Namespace(), "") + "." + fe.Tag(),
		fe.Field() + "." + fe.Tag(),
	}
	for _, key := range keys {
		if msg, ok := v.messages[key]; ok {
			return msg
		}
	}
	return genericMessage(fe)
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func genericMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s length must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s length must be less than or equal to %s characters long", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "dive":
		return fmt.Sprintf("%s is invalid", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}
