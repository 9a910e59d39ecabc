// Package response writes the exam service's JSON envelope. Every reply,
// success or error, carries the same {status, message, data} shape so exam
// clients keep a single decode path across admission and session routes.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape of every response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success envelope carrying data.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Status: "success", Data: data})
}

// Error writes an error envelope with a client-facing message.
func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, Envelope{Status: "error", Message: msg})
}

func write(w http.ResponseWriter, status int, e Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}
