// Package httputil centralizes JSON response writing so every handler uses the
// same error envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "stargate/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON envelope. Internal errors
// never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err, false)
}

// WriteErrorWithDetail is WriteError that also describes internal errors with
// the full error chain. Only development servers use it.
func WriteErrorWithDetail(w http.ResponseWriter, err error) {
	writeError(w, err, true)
}

func writeError(w http.ResponseWriter, err error, detail bool) {
	code := dErrors.CodeInternal
	message := ""
	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		message = de.Message
	}
	resp := ErrorResponse{Error: string(code)}
	switch {
	case code != dErrors.CodeInternal:
		resp.ErrorDescription = message
	case detail && err != nil:
		resp.ErrorDescription = err.Error()
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}
