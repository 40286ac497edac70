package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// envelope is the wire shape for every JSON response.
type envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// JSON writes a success response with the given status and payload.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// Error writes an error response. Unknown error types collapse to
// INTERNAL_ERROR so internals never leak to the client.
func Error(w http.ResponseWriter, err error) {
	apiErr := ErrInternal
	var known APIError
	if errors.As(err, &known) {
		apiErr = known
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &apiErr})
}
