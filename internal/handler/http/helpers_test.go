package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/litreads/internal/catalog"
	"github.com/utafrali/litreads/internal/event"
	"github.com/utafrali/litreads/internal/repository/memory"
	"github.com/utafrali/litreads/internal/service"
	"github.com/utafrali/litreads/internal/view"
	"github.com/utafrali/litreads/pkg/health"
	"github.com/utafrali/litreads/pkg/middleware"
)

const testVisitor = "6f1c2a4e-8b1d-4c39-9a57-2f0e3d5b7c11"

type testServer struct {
	handler http.Handler
	store   *memory.Store
	carts   *service.CartService
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimit(t, middleware.RateLimitConfig{RPS: 1000, Burst: 1000})
}

func newTestServerWithLimit(t *testing.T, limit middleware.RateLimitConfig) *testServer {
	t.Helper()

	cat, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	renderer, err := view.New()
	require.NoError(t, err)

	logger := newTestLogger()
	store := memory.NewStore(0)
	carts := service.NewCartService(store, cat, event.Noop{}, logger)
	prefs := service.NewPreferenceService(store, logger)
	forms := service.NewFormService(carts, event.Noop{}, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("storage", store.Ping)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := NewRouter(ctx,
		NewStorefrontHandler(cat, carts, prefs, forms, renderer, logger),
		NewAPIHandler(cat, carts, logger),
		healthHandler,
		logger,
		RouterConfig{FormRateLimit: limit},
	)
	return &testServer{handler: router, store: store, carts: carts}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	if req.Header.Get(middleware.VisitorHeader) == "" {
		req.Header.Set(middleware.VisitorHeader, testVisitor)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) getFragment(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("HX-Request", "true")
	return s.do(req)
}

func (s *testServer) postForm(path string, form url.Values, fragment bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if fragment {
		req.Header.Set("HX-Request", "true")
	}
	return s.do(req)
}

func (s *testServer) doJSON(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(req)
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func dataIDs(doc *goquery.Document, selector string) []string {
	var ids []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("data-id", ""))
	})
	return ids
}
