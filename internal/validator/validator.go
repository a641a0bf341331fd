// Package validator builds the shared request and catalog validator.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom "notblank" rule registered.
// Handlers, the catalog loader and tests all go through here.
func New() *validator.Validate {
	v := validator.New()

	// notblank rejects whitespace-only strings such as a display name of "   ".
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return strings.TrimSpace(str) != ""
	})

	return v
}
