package server

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure.
type ErrorDetail struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details carries structured context, such as lint issues.
	Details any `json:"details,omitempty"`
}

// Error codes.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeInvalidRules     = "invalid_rules"
	CodeBodyTooLarge     = "body_too_large"
	CodeNoRules          = "no_rules"
	CodeStoreDisabled    = "store_disabled"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeReloadFailed     = "reload_failed"
	CodeInternal         = "internal_error"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	respondJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// decodeError maps a body decoding failure to a response.
func decodeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		respondError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "request body too large", nil)
		return
	}
	respondError(w, http.StatusBadRequest, CodeInvalidJSON, "malformed request body: "+err.Error(), nil)
}
