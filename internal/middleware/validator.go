package middleware

import (
    "errors"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to echo.Validator so handlers can
// call c.Validate(&req).
type Validator struct {
    v *validator.Validate
}

func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    // Report JSON field names instead of Go field names.
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error { return cv.v.Struct(i) }

// InvalidFields lists the JSON names of the fields that failed validation,
// or nil when err is not a validation error.
func InvalidFields(err error) []string {
    var ve validator.ValidationErrors
    if !errors.As(err, &ve) {
        return nil
    }
    out := make([]string, 0, len(ve))
    for _, fe := range ve {
        out = append(out, fe.Field())
    }
    return out
}
