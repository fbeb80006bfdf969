// Package validation wraps go-playground/validator for request structs and
// translates its field errors into domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	dErrors "coursehub/pkg/domain-errors"
)

// Request-level size limits shared by handlers.
const (
	MaxIntroductionLength  = 2000
	MaxFreeTextLength      = 255
	MaxSecondaryCategories = 3
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the process-wide validator. Field names in errors use
// the json tag so messages match the request body.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct validates s against its `validate` tags. The first failing field is
// reported as a CodeValidation error with a "field" detail.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request")
	}
	fe := fieldErrs[0]
	field := fieldPath(fe)
	return dErrors.New(dErrors.CodeValidation, describe(field, fe)).
		WithReason("invalid_field").
		WithDetail("field", field)
}

// fieldPath drops the top-level struct name: "UpsertRequest.items[0].company" -> "items[0].company".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
