package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/litreads/internal/catalog"
	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/internal/engine"
	"github.com/utafrali/litreads/internal/view"
	"github.com/utafrali/litreads/pkg/httputil"
	"github.com/utafrali/litreads/pkg/middleware"
)

// Home handles GET /.
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, http.StatusOK, view.PageHome,
		h.layout(r, "LitReads", view.PageHome, h.homeContent()))
}

func (h *StorefrontHandler) homeContent() view.HomeContent {
	return view.HomeContent{Featured: h.catalog.Featured(catalog.FeaturedCount)}
}

// Products handles GET /products. The query string carries the grid
// controls so a filtered view can be bookmarked.
func (h *StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	criteria := domain.ParseFilterCriteria(r.URL.Query())
	products := engine.Filter(h.catalog.All(), criteria)

	if httputil.IsFragmentRequest(r) {
		h.writeGrid(w, r, criteria, products)
		return
	}

	content := view.NewProductsContent(criteria, products, h.catalog.MaxPrice())
	h.writePage(w, r, http.StatusOK, view.PageProducts,
		h.layout(r, "Books", view.PageProducts, content))
}

// ProductsGrid handles GET /products/grid, the fragment the filter
// controls swap into #grid-region.
func (h *StorefrontHandler) ProductsGrid(w http.ResponseWriter, r *http.Request) {
	criteria := domain.ParseFilterCriteria(r.URL.Query())
	h.writeGrid(w, r, criteria, engine.Filter(h.catalog.All(), criteria))
}

func (h *StorefrontHandler) writeGrid(w http.ResponseWriter, r *http.Request, criteria domain.FilterCriteria, products []domain.Product) {
	push := "/products"
	if q := criteria.Query().Encode(); q != "" {
		push += "?" + q
	}
	w.Header().Set(headerPushURL, push)
	h.writeFragment(w, r, http.StatusOK, view.FragmentGrid, products)
}

// Product handles GET /product?id=N. Unknown or malformed ids render the
// detail page with a not-found message and status 404.
func (h *StorefrontHandler) Product(w http.ResponseWriter, r *http.Request) {
	var product *domain.Product
	if id, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("id"))); err == nil {
		if p, ok := h.catalog.Get(id); ok {
			product = &p
		}
	}

	status, title := http.StatusOK, "Product not found"
	if product == nil {
		status = http.StatusNotFound
	} else {
		title = product.Title
	}

	if httputil.IsFragmentRequest(r) {
		h.writeFragment(w, r, status, view.FragmentDetail, product)
		return
	}
	h.writePage(w, r, status, view.PageDetail,
		h.layout(r, title, view.PageProducts, view.DetailContent{Product: product}))
}

// Cart handles GET /cart.
func (h *StorefrontHandler) Cart(w http.ResponseWriter, r *http.Request) {
	cart := h.carts.View(r.Context(), middleware.VisitorIDFromContext(r.Context()))
	h.writePage(w, r, http.StatusOK, view.PageCart,
		h.layout(r, "Your cart", view.PageCart, view.CartContent{Cart: cart}))
}

// CartFragment handles GET /cart/fragment.
func (h *StorefrontHandler) CartFragment(w http.ResponseWriter, r *http.Request) {
	cart := h.carts.View(r.Context(), middleware.VisitorIDFromContext(r.Context()))
	h.writeCart(w, r, cart)
}

// CartCount handles GET /cart/count, the plain-text badge refresh.
func (h *StorefrontHandler) CartCount(w http.ResponseWriter, r *http.Request) {
	count := h.carts.Count(r.Context(), middleware.VisitorIDFromContext(r.Context()))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(strconv.Itoa(count)))
}

func (h *StorefrontHandler) writeCart(w http.ResponseWriter, r *http.Request, cart domain.CartView) {
	w.Header().Set(headerCartCount, strconv.Itoa(cart.Count))
	h.writeFragment(w, r, http.StatusOK, view.FragmentCart, cart)
}

// Checkout handles GET /checkout.
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart := h.carts.View(r.Context(), middleware.VisitorIDFromContext(r.Context()))
	h.writePage(w, r, http.StatusOK, view.PageCheckout,
		h.layout(r, "Checkout", view.PageCheckout, view.CheckoutContent{Cart: cart}))
}

// Contact handles GET /contact.
func (h *StorefrontHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, http.StatusOK, view.PageContact,
		h.layout(r, "Contact", view.PageContact, view.ContactContent{}))
}

// About handles GET /about.
func (h *StorefrontHandler) About(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, http.StatusOK, view.PageAbout,
		h.layout(r, "About", view.PageAbout, view.AboutContent{Body: h.renderer.About()}))
}
