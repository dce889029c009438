package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20 // 1MB

// DecodeStrict unmarshals a single JSON object into v and runs struct
// validation. On failure it writes the error response itself and
// returns false so handlers can bail with a bare return.
func DecodeStrict(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		WriteError(w, http.StatusUnsupportedMediaType, ErrorResponse[any]{
			Code:    ErrUnsupportedMedia,
			Message: "Content-Type must be application/json",
		})
		return false
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, ErrorResponse[any]{
			Code:    ErrInvalidJSON,
			Message: "invalid request body",
		})
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, ErrorResponse[any]{
			Code:    ErrInvalidJSON,
			Message: "request body must contain a single JSON object",
		})
		return false
	}

	if err := validate.Struct(v); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, ErrorResponse[[]FieldError]{
			Code:    ErrValidationFailed,
			Message: "validation failed",
			Details: ValidationDetails(err),
		})
		return false
	}
	return true
}
