package httpx

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

type createBody struct {
	URL string `json:"url"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     bool
		errContains string
		wantURL     string
	}{
		{
			name:    "valid body",
			body:    `{"url":"http://example.com/foo?x=1"}`,
			wantURL: "http://example.com/foo?x=1",
		},
		{
			name:    "unknown fields are ignored",
			body:    `{"url":"http://example.com","note":"hi"}`,
			wantURL: "http://example.com",
		},
		{
			name:        "empty body",
			body:        "",
			wantErr:     true,
			errContains: "request body is empty",
		},
		{
			name:        "malformed JSON",
			body:        `{"url":"http://example.com",}`,
			wantErr:     true,
			errContains: "malformed JSON",
		},
		{
			name:        "truncated JSON",
			body:        `{"url":"http://exa`,
			wantErr:     true,
			errContains: "malformed JSON",
		},
		{
			name:        "wrong type",
			body:        `{"url":42}`,
			wantErr:     true,
			errContains: "invalid value for field",
		},
		{
			name:        "multiple values",
			body:        `{"url":"a"}{"url":"b"}`,
			wantErr:     true,
			errContains: "multiple JSON values",
		},
		{
			name:        "trailing garbage",
			body:        `{"url":"a"}extra`,
			wantErr:     true,
			errContains: "multiple JSON values",
		},
		{
			name:        "body too large",
			body:        `{"url":"` + strings.Repeat("x", MaxRequestBodySize+1) + `"}`,
			wantErr:     true,
			errContains: "request body too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/create", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			got, err := DecodeJSON[createBody](req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errContains)
				}
				if got != (createBody{}) {
					t.Errorf("expected zero value on error, got %+v", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", got.URL, tt.wantURL)
			}
		})
	}
}

func TestDecodeJSON_ClosesBody(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`{"url":"http://example.com"}`)}
	req := httptest.NewRequest("POST", "/create", body)

	if _, err := DecodeJSON[createBody](req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !body.closed {
		t.Error("expected body to be closed")
	}
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
