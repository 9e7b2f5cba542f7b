package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// VisitorCookieName names the cookie that selects a visitor's storage namespace.
	VisitorCookieName = "litreads_visitor"
	// VisitorHeader lets scripted clients pick their namespace without cookies.
	VisitorHeader = "X-Visitor-ID"

	visitorCookieMaxAge = 365 * 24 * time.Hour
)

type contextKeyType string

const visitorIDKey contextKeyType = "visitor_id"

// VisitorOptions configures the visitor cookie.
type VisitorOptions struct {
	Secure bool
}

// Visitor resolves the visitor id for every request. An explicit
// X-Visitor-ID header wins, then the visitor cookie. When neither carries a
// valid UUID a new id is minted and the cookie is set on the response.
func Visitor(opts VisitorOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := visitorIDFromRequest(r)
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(visitorCookieMaxAge.Seconds()),
				})
			}
			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("litreads.visitor_id", id))
			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), id)))
		})
	}
}

// WithVisitorID stores the visitor id in ctx.
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorIDKey, id)
}

// VisitorIDFromContext returns the visitor id set by Visitor.
func VisitorIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(visitorIDKey).(string); ok {
		return id
	}
	return ""
}

// visitorIDFromRequest returns a normalized visitor id from the header or
// cookie, or "" when neither holds a valid UUID.
func visitorIDFromRequest(r *http.Request) string {
	if id := normalizeVisitorID(r.Header.Get(VisitorHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(VisitorCookieName); err == nil {
		return normalizeVisitorID(c.Value)
	}
	return ""
}

func normalizeVisitorID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return ""
	}
	return id.String()
}
