// Package httputil centralizes JSON response writing so every handler emits
// the same envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	domainerrors "entmatrix/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. Errors
// without a code are reported as internal.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(domainerrors.CodeInternal)
	message := "internal error"

	var de *domainerrors.Error
	if errors.As(err, &de) {
		status = domainerrors.ToHTTPStatus(de.Code)
		code = string(de.Code)
		message = de.Message
	}

	WriteJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
