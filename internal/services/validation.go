package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists what is wrong with a submitted form: problems with the form as a whole
// and per-field messages keyed by the JSON field name.
type ValidationError struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func (e *ValidationError) Error() string {
	parts := append([]string(nil), e.FormErrors...)
	for field, msgs := range e.FieldErrors {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewFormError reports a problem that is not tied to a single field.
func NewFormError(msg string) *ValidationError {
	return &ValidationError{FormErrors: []string{msg}, FieldErrors: map[string][]string{}}
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
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
	return v
}

// validateStruct runs v on s and converts failures into a *ValidationError.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewFormError(err.Error())
	}
	out := &ValidationError{FormErrors: []string{}, FieldErrors: map[string][]string{}}
	for _, fe := range verrs {
		out.FieldErrors[fe.Field()] = append(out.FieldErrors[fe.Field()], fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", quoteOptions(fe.Param()), fe.Value())
	case "gte":
		return fmt.Sprintf("Number must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
	}
}

func quoteOptions(param string) string {
	opts := strings.Fields(param)
	for i, o := range opts {
		opts[i] = "'" + o + "'"
	}
	return strings.Join(opts, " | ")
}
