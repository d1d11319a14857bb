// Package shared holds the JSON response helpers every handler uses so error
// envelopes stay uniform across domains.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
)

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain or sentinel error into the standard JSON
// error envelope. Unrecognized errors become opaque 500s so internal detail
// never leaks to clients.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.DomainError
	if errors.As(err, &de) {
		WriteJSON(w, dErrors.ToHTTPStatus(de.Code), map[string]string{
			"error":   string(de.Code),
			"message": de.Message,
		})
		return
	}

	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": string(dErrors.CodeNotFound)})
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrAlreadyUsed):
		WriteJSON(w, http.StatusConflict, map[string]string{"error": string(dErrors.CodeConflict)})
	case errors.Is(err, sentinel.ErrInvalidState):
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": string(dErrors.CodeIneligible)})
	case errors.Is(err, sentinel.ErrExpired):
		WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": string(dErrors.CodeTokenExpired)})
	default:
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": string(dErrors.CodeInternal)})
	}
}
