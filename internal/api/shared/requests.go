package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance for request structs.
var Validate = validator.New()

// maxRequestBody caps request bodies at 1MB; notification payloads are small.
const maxRequestBody = 1 << 20

// DecodeJSON decodes a JSON request body into v, rejecting unknown fields
// and oversized bodies.
func DecodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	return nil
}

// SanitizeValidationError converts a validator error into a client-safe
// message naming only the offending fields.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Validation error"
	}

	msg := "Validation error"
	for i, fe := range verrs {
		if i == 0 {
			msg += ": "
		} else {
			msg += ", "
		}
		msg += fe.Field()
	}
	return msg
}
