// Package models provides the response models of the SkyGate API.
package models

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response wrapper used at every API boundary.
// Exactly one of Data/Error is present: Data iff Success, Error otherwise.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail builds a failure envelope.
func Fail(message string) Envelope {
	return Envelope{Success: false, Error: message}
}

// Write serializes the envelope with the given HTTP status.
func (e Envelope) Write(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}
