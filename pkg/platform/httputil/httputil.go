// Package httputil centralizes JSON response writing and domain error
// translation for the HTTP layer.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "gatehouse/pkg/domain-errors"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into an HTTP response. Internal errors
// omit the description so storage details never leak to callers; everything
// else carries its description through.
func WriteError(w http.ResponseWriter, err error) {
	var derr *dErrors.Error
	if !errors.As(err, &derr) {
		derr = dErrors.New(dErrors.CodeInternal, "internal error")
	}

	body := map[string]string{"error": string(derr.Code)}
	if derr.Code != dErrors.CodeInternal {
		body["error_description"] = derr.Description
	}
	WriteJSON(w, statusFor(derr.Code), body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
