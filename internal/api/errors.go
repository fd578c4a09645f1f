package api

import (
	"encoding/json"
	"net/http"

	"social-graph-atlas/internal/apperr"
)

// errorEnvelope is the JSON shape written for any non-2xx response.
type errorEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON encodes v as the 200 response body.
func writeJSON(w http.ResponseWriter, v any) {
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code per spec §7 and writes the error
// envelope. A plain (non-apperr) error is treated as internal.
func writeError(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorEnvelope{Error: err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusUnprocessableEntity
	case apperr.KindUpstreamTransient, apperr.KindUpstreamHard:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Error: e.Message, Fields: e.Fields})
}
