package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteJSON(rr, http.StatusOK, map[string]string{"status": "ready"})

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var got map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if got["status"] != "ready" {
		t.Errorf("status = %q, want ready", got["status"])
	}
}

func TestWriteText(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteText(rr, http.StatusOK, "http://sho.rt/l/abcDEF1")

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("unexpected Content-Type %q", ct)
	}
	if body := rr.Body.String(); body != "http://sho.rt/l/abcDEF1" {
		t.Errorf("body = %q, want short link without trailing newline", body)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		code        string
		message     string
		details     any
		wantDetails string
	}{
		{
			name:    "without details",
			status:  http.StatusBadRequest,
			code:    "invalid_url",
			message: "invalid url: missing protocol scheme",
		},
		{
			name:        "with details",
			status:      http.StatusServiceUnavailable,
			code:        "code_space_exhausted",
			message:     "Unable to allocate a short code",
			details:     map[string]int{"attempts": 5},
			wantDetails: `{"attempts":5}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			WriteError(rr, tt.status, tt.code, tt.message, tt.details)

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Error != tt.code {
				t.Errorf("error = %q, want %q", resp.Error, tt.code)
			}
			if resp.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Message, tt.message)
			}

			if tt.wantDetails == "" {
				if resp.Details != nil {
					t.Errorf("expected nil details, got %v", resp.Details)
				}
				return
			}
			got, _ := json.Marshal(resp.Details)
			if string(got) != tt.wantDetails {
				t.Errorf("details = %s, want %s", got, tt.wantDetails)
			}
		})
	}
}

func TestWriteJSON_Unencodable(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteJSON(rr, http.StatusOK, map[string]any{"ch": make(chan int)})

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != "internal_error" {
		t.Errorf("error = %q, want internal_error", resp.Error)
	}
}
