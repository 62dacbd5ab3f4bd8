package httpx

import (
	"net/http"

	"github.com/ajith05/url-shortener/internal/errx"
)

var kindStatus = map[errx.Kind]int{
	errx.NotFound:    http.StatusNotFound,
	errx.Conflict:    http.StatusConflict,
	errx.Invalid:     http.StatusBadRequest,
	errx.Unavailable: http.StatusServiceUnavailable,
	errx.Exhausted:   http.StatusServiceUnavailable,
}

// ErrorKindToStatus maps an error kind to its HTTP status. Kinds without an
// entry are server errors.
func ErrorKindToStatus(kind errx.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorKindToCode maps an error kind to the "error" field of ErrorResponse.
func ErrorKindToCode(kind errx.Kind) string {
	return kind.Code()
}

// WriteKindError writes the JSON error response for err's kind with a
// client-facing message.
func WriteKindError(w http.ResponseWriter, err error, message string) {
	kind := errx.KindOf(err)
	WriteError(w, ErrorKindToStatus(kind), ErrorKindToCode(kind), message, nil)
}
