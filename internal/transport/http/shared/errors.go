// Package shared holds transport helpers used by every handler: the JSON
// error envelope and the domain-code to HTTP-status mapping.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "passage/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusByCode maps domain error codes onto HTTP statuses. Unknown codes fall
// through to 500.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation:            http.StatusBadRequest,
	dErrors.CodeInvalidCredentials:    http.StatusUnauthorized,
	dErrors.CodeUserNotConfirmed:      http.StatusForbidden,
	dErrors.CodeProviderUnreachable:   http.StatusBadGateway,
	dErrors.CodeProviderMisconfigured: http.StatusBadGateway,
	dErrors.CodeServerUnreachable:     http.StatusBadGateway,
	dErrors.CodeAmbiguousMatch:        http.StatusConflict,
	dErrors.CodeStorageCorrupt:        http.StatusInternalServerError,
	dErrors.CodeAlreadyInProgress:     http.StatusConflict,
	dErrors.CodeInternal:              http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError translates a domain error into the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, StatusFor(code), ErrorResponse{
		Error:   string(code),
		Message: err.Error(),
	})
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
