package shortener

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ajith05/url-shortener/internal/errx"
	"github.com/ajith05/url-shortener/internal/httpx"
)

// mockService implements Service for handler tests.
type mockService struct {
	createFunc  func(ctx context.Context, rawURL string) (CreateResult, error)
	resolveFunc func(ctx context.Context, code string) (string, error)
}

func (m *mockService) Create(ctx context.Context, rawURL string) (CreateResult, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, rawURL)
	}
	return CreateResult{Link: Link{Code: "abcDEF1"}}, nil
}

func (m *mockService) Resolve(ctx context.Context, code string) (string, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, code)
	}
	return "", errx.E("mock.Resolve", errx.NotFound, errors.New("not found"))
}

func newCreateRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newResolveRequest(code string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, LinkPathPrefix+code, nil)
	req.SetPathValue("code", code)
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httpx.ErrorResponse {
	t.Helper()
	var resp httpx.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v (%q)", err, rr.Body.String())
	}
	return resp
}

func TestHandlerCreateLink(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
		wantBody   string
		wantCode   string
	}{
		{
			name:       "returns the short link as text",
			body:       `{"url": "http://example.com/foo?x=1"}`,
			wantStatus: http.StatusOK,
			wantBody:   "http://example.com/l/abcDEF1",
		},
		{
			name:       "unknown fields are ignored",
			body:       `{"url": "http://example.com/", "custom": true}`,
			wantStatus: http.StatusOK,
			wantBody:   "http://example.com/l/abcDEF1",
		},
		{
			name:       "malformed json",
			body:       `{"url":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "missing url",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "blank url",
			body:       `{"url": "   "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "unparseable url",
			body:       `{"url": "http://x.test/%zz"}`,
			createErr:  errx.E("shortener.service.Create", errx.Invalid, errors.New("invalid URL escape")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_url",
		},
		{
			name:       "code space exhausted",
			body:       `{"url": "http://example.com/"}`,
			createErr:  errx.E("shortener.service.createRandom", errx.Exhausted, ErrCodeSpaceExhausted),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "code_space_exhausted",
		},
		{
			name:       "store unavailable",
			body:       `{"url": "http://example.com/"}`,
			createErr:  errx.E("shortener.repo.Insert", errx.Unavailable, errors.New("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "unavailable",
		},
		{
			name:       "unexpected error",
			body:       `{"url": "http://example.com/"}`,
			createErr:  errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			if tt.createErr != nil {
				svc.createFunc = func(ctx context.Context, rawURL string) (CreateResult, error) {
					return CreateResult{}, tt.createErr
				}
			}
			h := NewHandler(HandlerConfig{Service: svc})

			req := newCreateRequest(tt.body)
			req.Host = "example.com"
			rr := httptest.NewRecorder()
			h.CreateLink(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantBody != "" {
				if got := rr.Body.String(); got != tt.wantBody {
					t.Errorf("body = %q, want %q", got, tt.wantBody)
				}
				if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
					t.Errorf("Content-Type = %q, want text/plain", ct)
				}
			}
			if tt.wantCode != "" {
				if resp := decodeError(t, rr); resp.Error != tt.wantCode {
					t.Errorf("error code = %q, want %q", resp.Error, tt.wantCode)
				}
			}
		})
	}
}

func TestHandlerCreateLink_Origin(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		host    string
		tls     bool
		proto   string
		want    string
	}{
		{
			name: "plain http",
			host: "localhost:8000",
			want: "http://localhost:8000/l/abcDEF1",
		},
		{
			name: "tls",
			host: "sho.rt",
			tls:  true,
			want: "https://sho.rt/l/abcDEF1",
		},
		{
			name:  "forwarded proto",
			host:  "sho.rt",
			proto: "https",
			want:  "https://sho.rt/l/abcDEF1",
		},
		{
			name:  "bogus forwarded proto is ignored",
			host:  "sho.rt",
			proto: "gopher",
			want:  "http://sho.rt/l/abcDEF1",
		},
		{
			name:    "configured base url wins",
			baseURL: "https://links.example.com/",
			host:    "10.0.0.7:8000",
			want:    "https://links.example.com/l/abcDEF1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(HandlerConfig{Service: &mockService{}, BaseURL: tt.baseURL})

			req := newCreateRequest(`{"url": "http://example.com/"}`)
			req.Host = tt.host
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rr := httptest.NewRecorder()
			h.CreateLink(rr, req)

			if got := rr.Body.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandlerResolveLink(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		target       string
		resolveErr   error
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{
			name:         "redirects permanently",
			code:         "abcDEF1",
			target:       "http://example.com/foo?x=1",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "http://example.com/foo?x=1",
		},
		{
			name:         "location is not rewritten",
			code:         "abcDEF2",
			target:       "mailto:a@b.com",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "mailto:a@b.com",
		},
		{
			name:       "unknown code",
			code:       "zzzzzzz",
			resolveErr: errx.E("shortener.repo.FindByCode", errx.NotFound, errors.New("no rows")),
			wantStatus: http.StatusNotFound,
			wantBody:   "404 Not Found",
		},
		{
			name:       "store unavailable",
			code:       "abcDEF1",
			resolveErr: errx.E("shortener.repo.FindByCode", errx.Unavailable, errors.New("timeout")),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unexpected error",
			code:       "abcDEF1",
			resolveErr: errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{
				resolveFunc: func(ctx context.Context, code string) (string, error) {
					if code != tt.code {
						t.Errorf("Resolve() got code %q, want %q", code, tt.code)
					}
					return tt.target, tt.resolveErr
				},
			}
			h := NewHandler(HandlerConfig{Service: svc})

			rr := httptest.NewRecorder()
			h.ResolveLink(rr, newResolveRequest(tt.code))

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			if tt.wantBody != "" && strings.TrimSpace(rr.Body.String()) != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestValidateCreateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     HTTPCreateLinkRequest
		wantErr bool
	}{
		{"valid url", HTTPCreateLinkRequest{URL: "https://example.com"}, false},
		{"scheme-less input is left to the canonicalizer", HTTPCreateLinkRequest{URL: "example.com"}, false},
		{"empty url", HTTPCreateLinkRequest{URL: ""}, true},
		{"whitespace only url", HTTPCreateLinkRequest{URL: " \t "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCreateRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCreateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
