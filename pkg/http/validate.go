package http

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors aggregates per-field validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

var validate = validator.New()

// BindAndValidate binds the request into dst, applies struct defaults
// for fields the client omitted, and runs validator tags.
func BindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return NewBadRequest("malformed request", err)
	}
	if err := defaults.Set(dst); err != nil {
		return NewInternal("apply defaults", err)
	}
	if err := validate.Struct(dst); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return NewBadRequest("invalid request", err)
		}
		out := make(ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, ValidationError{
				Code:    fe.Tag(),
				Field:   strings.ToLower(fe.Field()),
				Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
				Params:  map[string]string{"value": fmt.Sprintf("%v", fe.Value())},
			})
		}
		return out
	}
	return nil
}
