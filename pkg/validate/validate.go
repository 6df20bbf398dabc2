// Package validate wraps go-playground/validator with the rule table tabdeck
// uses for config files and prompt input.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var commandNameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// Validator holds a configured validator instance. Build one at startup with
// New and pass it where needed.
type Validator struct {
	v *validator.Validate
}

// FieldError is a single failed rule.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: failed %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s: failed %s", e.Field, e.Rule)
}

// Errors is returned by Struct and Batch when one or more fields fail.
type Errors []FieldError

func (es Errors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// New returns a validator with tabdeck's custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("commandname", func(fl validator.FieldLevel) bool {
		return commandNameRe.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Field validates one value against a tag such as "required,commandname".
func (v *Validator) Field(name string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	errs := convert(err)
	for i := range errs {
		errs[i].Field = name
	}
	return errs
}

// Struct validates every tagged field of s.
func (v *Validator) Struct(s any) error {
	if err := v.v.Struct(s); err != nil {
		return convert(err)
	}
	return nil
}

// Batch validates several named values at once and reports all failures,
// sorted by field name.
func (v *Validator) Batch(fields map[string]Rule) error {
	var out Errors
	for name, r := range fields {
		if err := v.Field(name, r.Value, r.Tag); err != nil {
			var fe Errors
			if errors.As(err, &fe) {
				out = append(out, fe...)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// Rule pairs a value with its validation tag for Batch.
type Rule struct {
	Value any
	Tag   string
}

func convert(err error) Errors {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Errors{{Field: "?", Rule: err.Error()}}
	}
	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, FieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
