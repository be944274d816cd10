// Package validation adapts go-playground/validator to echo and adds the
// date rules used by request bodies.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ehr/hospital/internal/platform/apperr"
)

// Validator implements echo.Validator.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New returns a Validator with the "past" and "future" time rules
// registered. Field names in messages use the json tag.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock is New with an explicit time source for the date rules.
func NewWithClock(now func() time.Time) *Validator {
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}
	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister(val.v, "past", val.past)
	mustRegister(val.v, "future", val.future)
	return val
}

// mustRegister panics when a rule cannot be registered. Rules are
// registered once at startup, so this is a programming error.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

func (val *Validator) past(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && t.Before(val.now())
}

func (val *Validator) future(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && t.After(val.now())
}

// Validate checks i and returns an error wrapping apperr.ErrInvalidInput
// that lists every failing field.
func (val *Validator) Validate(i interface{}) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Invalid("%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, translate(fe))
	}
	return apperr.Invalid("%s", strings.Join(msgs, "; "))
}

var messages = map[string]string{
	"required": "%s is required",
	"numeric":  "%s must contain only digits",
	"past":     "%s must be in the past",
	"future":   "%s must be in the future",
	"alphanum": "%s must be alphanumeric",
}

var messagesWithParam = map[string]string{
	"max":   "%s must be at most %s characters",
	"min":   "%s must be at least %s characters",
	"len":   "%s must have exactly %s characters",
	"oneof": "%s must be one of: %s",
}

func translate(fe validator.FieldError) string {
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
