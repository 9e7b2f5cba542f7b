// Package http binds storefront requests to the cart, filter and view layers.
package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/utafrali/litreads/internal/catalog"
	"github.com/utafrali/litreads/internal/service"
	"github.com/utafrali/litreads/internal/view"
	apperrors "github.com/utafrali/litreads/pkg/errors"
	"github.com/utafrali/litreads/pkg/httputil"
	"github.com/utafrali/litreads/pkg/logger"
	"github.com/utafrali/litreads/pkg/middleware"
)

// htmx response headers.
const (
	headerCartCount = "X-Cart-Count"
	headerTrigger   = "HX-Trigger"
	headerPushURL   = "HX-Push-Url"
	headerRefresh   = "HX-Refresh"

	eventCartUpdated = "cart-updated"
)

// StorefrontHandler serves the HTML storefront.
type StorefrontHandler struct {
	catalog  *catalog.Catalog
	carts    *service.CartService
	prefs    *service.PreferenceService
	forms    *service.FormService
	renderer *view.Renderer
	logger   *slog.Logger
}

// NewStorefrontHandler creates the page controller.
func NewStorefrontHandler(
	cat *catalog.Catalog,
	carts *service.CartService,
	prefs *service.PreferenceService,
	forms *service.FormService,
	renderer *view.Renderer,
	logger *slog.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:  cat,
		carts:    carts,
		prefs:    prefs,
		forms:    forms,
		renderer: renderer,
		logger:   logger,
	}
}

// layout fills the parts of PageData every page shares.
func (h *StorefrontHandler) layout(r *http.Request, title, active string, content any) view.PageData {
	ctx := r.Context()
	visitorID := middleware.VisitorIDFromContext(ctx)
	return view.PageData{
		Title:      title,
		Active:     active,
		CartCount:  h.carts.Count(ctx, visitorID),
		DarkMode:   h.prefs.Get(ctx, visitorID).DarkMode,
		Categories: h.catalog.Categories(),
		Content:    content,
	}
}

func (h *StorefrontHandler) writePage(w http.ResponseWriter, r *http.Request, status int, name string, data view.PageData) {
	var buf bytes.Buffer
	if err := h.renderer.WritePage(&buf, name, data); err != nil {
		h.renderFailed(w, r, name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *StorefrontHandler) writeFragment(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.renderer.WriteFragment(&buf, name, data); err != nil {
		h.renderFailed(w, r, name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *StorefrontHandler) renderFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	h.log(r).ErrorContext(r.Context(), "render failed",
		slog.String("template", name),
		slog.String("error", err.Error()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// writeError renders err for a browser. htmx requests get a short text body
// so the swap target is not replaced with a whole page.
func (h *StorefrontHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	message := publicMessage(err, status)

	if status >= http.StatusInternalServerError {
		h.log(r).ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	if httputil.WantsJSON(r) {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if httputil.IsFragmentRequest(r) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(message))
		return
	}
	h.writePage(w, r, status, view.PageError, h.layout(r, http.StatusText(status), "", view.ErrorContent{
		Status:  status,
		Message: message,
	}))
}

// RateLimited renders the rejection for throttled form posts.
func (h *StorefrontHandler) RateLimited(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, apperrors.RateLimited())
}

// NotFound renders the 404 page for unknown routes.
func (h *StorefrontHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, apperrors.NotFound("page", r.URL.Path))
}

func publicMessage(err error, status int) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		return appErr.Message
	}
	switch status {
	case http.StatusServiceUnavailable:
		return "The shop is having trouble right now. Please try again shortly."
	case http.StatusInternalServerError:
		return "Something went wrong. Please try again."
	default:
		return http.StatusText(status)
	}
}

func (h *StorefrontHandler) log(r *http.Request) *slog.Logger {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		return h.logger
	}
	return l
}

// redirectBack answers a plain form post with 303 to the page it came from.
// Only same-host referrers are honoured.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target = ref.Path
		if ref.RawQuery != "" {
			target += "?" + ref.RawQuery
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
