// utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var Validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationErrors flattens validator output into a field-to-message map
// for JSON error envelopes.
func ValidationErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "is required"
		case "email":
			out[field] = "must be a valid email"
		case "min":
			out[field] = "is too short or too small"
		case "max":
			out[field] = "is too long or too large"
		default:
			out[field] = "failed " + fe.Tag() + " validation"
		}
	}
	return out
}
