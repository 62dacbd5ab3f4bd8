package shortener

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ajith05/url-shortener/internal/errx"
	"github.com/ajith05/url-shortener/internal/httpx"
)

// LinkPathPrefix is the route prefix short links are served under.
const LinkPathPrefix = "/l/"

// HTTPCreateLinkRequest represents the JSON request body for creating a link.
type HTTPCreateLinkRequest struct {
	URL string `json:"url"`
}

// Handler provides HTTP handlers for the URL shortener service.
type Handler struct {
	service Service
	logger  *slog.Logger
	baseURL string
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
	BaseURL string // overrides the request origin when set (e.g. "https://short.ly")
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// CreateLink handles POST /create. The response body is the short link as
// plain text.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	logger := h.logger.With(
		"request_id", httpx.GetRequestID(ctx),
		"method", r.Method,
		"path", r.URL.Path,
	)

	req, err := httpx.DecodeJSON[HTTPCreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	if err := validateCreateRequest(req); err != nil {
		logger.WarnContext(ctx, "request validation failed", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
		return
	}

	res, err := h.service.Create(ctx, req.URL)
	if err != nil {
		h.handleCreateError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "short link issued",
		"code", res.Link.Code,
		"existing", res.Existing,
	)

	httpx.WriteText(w, http.StatusOK, h.origin(r)+LinkPathPrefix+res.Link.Code)
}

// ResolveLink handles GET /l/{code} with a permanent redirect.
func (h *Handler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	logger := h.logger.With(
		"request_id", httpx.GetRequestID(ctx),
		"code", code,
	)

	target, err := h.service.Resolve(ctx, code)
	if err != nil {
		h.handleResolveError(ctx, logger, w, err)
		return
	}

	logger.DebugContext(ctx, "code resolved", "location", target)

	// Location is set verbatim; http.Redirect would rewrite scheme-less
	// targets relative to the request path.
	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusMovedPermanently)
}

// origin returns the configured base URL, or the scheme and host the request
// arrived on.
func (h *Handler) origin(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (h *Handler) handleCreateError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)
	logger = logger.With(
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	)

	switch kind {
	case errx.Invalid:
		logger.WarnContext(ctx, "invalid url")
		httpx.WriteKindError(w, err, strings.TrimPrefix(err.Error(), errx.OpOf(err)+": "))

	case errx.Exhausted:
		logger.ErrorContext(ctx, "no free code")
		httpx.WriteKindError(w, err, "Unable to allocate a short code. Please try again.")

	default:
		logger.ErrorContext(ctx, "failed to create link")
		httpx.WriteKindError(w, err, "Unable to create short link at this time. Please try again.")
	}
}

func (h *Handler) handleResolveError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)
	logger = logger.With(
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	)

	if kind == errx.NotFound {
		logger.InfoContext(ctx, "code not found")
		http.Error(w, "404 Not Found", http.StatusNotFound)
		return
	}

	logger.ErrorContext(ctx, "failed to resolve link")
	httpx.WriteKindError(w, err, "Unable to resolve this link at this time")
}

func validateCreateRequest(req HTTPCreateLinkRequest) error {
	if strings.TrimSpace(req.URL) == "" {
		return errors.New("url is required")
	}
	return nil
}
