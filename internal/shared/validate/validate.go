// Package validate wraps go-playground/validator and turns its field errors
// into application validation errors keyed by JSON field name.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/digital-station/platform/internal/shared/errors"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// notblank treats whitespace-only strings as missing.
	_ = val.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return Text(s) && strings.TrimSpace(s) != ""
	})
	_ = val.RegisterValidation("text", func(fl validator.FieldLevel) bool {
		return Text(fl.Field().String())
	})
	_ = val.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	_ = val.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := ParseClock(fl.Field().String())
		return err == nil
	})

	return val
}

// Text reports whether s can be stored as a Postgres text value: valid UTF-8
// with no NUL bytes.
func Text(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// ParseClock accepts HH:MM or HH:MM:SS.
func ParseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.TimeOnly, s); err == nil {
		return t, nil
	}
	return time.Parse("15:04", s)
}

// Struct validates s and returns an *errors.AppError (422) describing every
// failing field, or nil.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Internal(err)
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	return errors.Validation("validation failed", details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		if s, ok := fe.Value().(string); ok && strings.TrimSpace(s) != "" {
			return "invalid text"
		}
		return "field required"
	case "required":
		return "field required"
	case "text":
		return "invalid text"
	case "isodate":
		return "invalid date, expected YYYY-MM-DD"
	case "clock":
		return "invalid time, expected HH:MM or HH:MM:SS"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
