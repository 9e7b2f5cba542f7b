package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/litreads/pkg/middleware"
)

func TestHome_RendersFeaturedAndCategories(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	doc := parseHTML(t, rec)
	assert.Equal(t, 4, doc.Find("#home-featured .card").Length())
	var categories []string
	doc.Find("ul.categories li").Each(func(_ int, s *goquery.Selection) {
		categories = append(categories, strings.TrimSpace(s.Text()))
	})
	assert.Equal(t, []string{"Fiction", "Science", "Children", "Non-fiction"}, categories)
	assert.Equal(t, "0", doc.Find("#cart-count").Text())
}

func TestHome_MintsVisitorCookie(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.VisitorCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestProducts_CategoryPresetsFilterAndSelect(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.get("/products?category=Science")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, []string{"6", "2"}, dataIDs(doc, "#product-grid .card"))
	assert.Equal(t, "Science", doc.Find("#category-filter option[selected]").AttrOr("value", ""))
}

func TestProducts_DefaultOrderIsNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	doc := parseHTML(t, srv.get("/products"))
	assert.Equal(t, []string{"6", "5", "4", "3", "2", "1"}, dataIDs(doc, "#product-grid .card"))
	assert.Equal(t, "220", doc.Find("#price-filter").AttrOr("max", ""))
}

func TestProductsGrid_FragmentOnly(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.getFragment("/products/grid?sort=low&max_price=150")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<html")
	assert.Equal(t, "/products?max_price=150&sort=low", rec.Header().Get(headerPushURL))
	assert.Contains(t, rec.Header().Values("Vary"), "HX-Request")

	doc := parseHTML(t, rec)
	assert.Equal(t, []string{"3", "5", "2", "4"}, dataIDs(doc, "#product-grid .card"))
}

func TestProductsGrid_NoResults(t *testing.T) {
	srv := newTestServer(t)

	doc := parseHTML(t, srv.getFragment("/products/grid?q=zzz-no-such-book"))
	assert.Equal(t, 1, doc.Find("#no-results").Length())
	assert.Equal(t, 0, doc.Find("#product-grid").Length())
}

func TestProduct_Found(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.get("/product?id=4")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, "4", doc.Find(".product-detail").AttrOr("data-id", ""))
	assert.Equal(t, "R150.00", strings.TrimSpace(doc.Find(".product-detail .price").Text()))
}

func TestProduct_NotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/product?id=99", "/product?id=abc", "/product"} {
		t.Run(path, func(t *testing.T) {
			rec := srv.get(path)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "Product not found.")
		})
	}
}

func TestCartCount_PlainText(t *testing.T) {
	srv := newTestServer(t)
	_, err := srv.carts.Add(t.Context(), testVisitor, 2, 3)
	require.NoError(t, err)

	rec := srv.get("/cart/count")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestCartPage_EmptyCart(t *testing.T) {
	srv := newTestServer(t)

	doc := parseHTML(t, srv.get("/cart"))
	assert.Equal(t, "R0.00", doc.Find("#cart-total").Text())
	assert.Contains(t, doc.Find("#cart-items").Text(), "Your cart is empty")
}

func TestCartFragment_ReflectsStoredCart(t *testing.T) {
	srv := newTestServer(t)
	_, err := srv.carts.Add(t.Context(), testVisitor, 1, 2)
	require.NoError(t, err)
	_, err = srv.carts.Add(t.Context(), testVisitor, 4, 1)
	require.NoError(t, err)

	rec := srv.getFragment("/cart/fragment")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get(headerCartCount))

	doc := parseHTML(t, rec)
	assert.Equal(t, "R548.00", doc.Find("#cart-total").Text())
	assert.ElementsMatch(t, []string{"1", "4"}, dataIDs(doc, ".cart-item"))
}

func TestAbout_RendersMarkdown(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.get("/about")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, "About LitReads", strings.TrimSpace(doc.Find("article.about h1").Text()))
	assert.Equal(t, 0, doc.Find("article.about script").Length())
}

func TestUnknownRoute_RendersNotFoundPage(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestStatic_ServesAssetsWithCacheHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.get("/static/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestHealth_Endpoints(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, srv.get("/health/live").Code)
	assert.Equal(t, http.StatusOK, srv.get("/health/ready").Code)
	assert.Equal(t, http.StatusOK, srv.get("/metrics").Code)
}
