package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON encodes v and writes it with status. An unencodable value turns
// into a 500 before any header is sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		write(w, http.StatusInternalServerError, contentTypeJSON,
			[]byte(`{"error":"internal_error"}`+"\n"))
		return
	}
	write(w, status, contentTypeJSON, append(body, '\n'))
}

// WriteText writes body as text/plain with status.
func WriteText(w http.ResponseWriter, status int, body string) {
	write(w, status, contentTypeText, []byte(body))
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

func write(w http.ResponseWriter, status int, contentType string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		// Client went away; headers are already sent.
		slog.Debug("failed to write response body", "error", err)
	}
}
