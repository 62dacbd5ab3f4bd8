package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ajith05/url-shortener/internal/errx"
	"github.com/ajith05/url-shortener/internal/httpx"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation ran and failed (unknown code, invalid url)
	ExitCommandError = 2 // bad flags, unreachable store
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// exitCodeFor maps service errors to exit codes. Store outages are command
// errors; everything the operation itself rejected is a failure.
func exitCodeFor(err error) int {
	switch errx.KindOf(err) {
	case errx.Unavailable:
		return ExitCommandError
	default:
		return ExitFailure
	}
}

// CLIResponse is the JSON envelope for --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success writes data as JSON, or text as a single line.
func (f *OutputFormatter) Success(text string, data any) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Error reports err. In JSON mode the envelope goes to Writer and the
// returned error still carries the exit code.
func (f *OutputFormatter) Error(message string, err error) error {
	code := exitCodeFor(err)

	if f.Format == "json" {
		if werr := f.writeJSON(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    httpx.ErrorKindToCode(errx.KindOf(err)),
				Message: err.Error(),
			},
		}); werr != nil {
			return werr
		}
	}
	return WrapExitError(code, message, err)
}

func (f *OutputFormatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
