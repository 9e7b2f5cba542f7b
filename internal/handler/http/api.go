package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/litreads/internal/catalog"
	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/internal/engine"
	"github.com/utafrali/litreads/internal/service"
	apperrors "github.com/utafrali/litreads/pkg/errors"
	"github.com/utafrali/litreads/pkg/httputil"
	"github.com/utafrali/litreads/pkg/middleware"
	"github.com/utafrali/litreads/pkg/validator"
)

// APIHandler serves the JSON API used by scripted clients.
type APIHandler struct {
	catalog *catalog.Catalog
	carts   *service.CartService
	logger  *slog.Logger
}

// NewAPIHandler creates the JSON API handler.
func NewAPIHandler(cat *catalog.Catalog, carts *service.CartService, logger *slog.Logger) *APIHandler {
	return &APIHandler{catalog: cat, carts: carts, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON body for adding to the cart. An absent
// quantity defaults to 1; an explicit value below 1 is rejected.
type AddItemRequest struct {
	ProductID int  `json:"id" validate:"required,gt=0"`
	Quantity  *int `json:"quantity" validate:"omitempty,lte=999"`
}

// UpdateQuantityRequest is the JSON body for replacing a line quantity.
// Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"lte=999"`
}

// --- Response DTOs ---

// CartResponse is the priced cart as returned by the API.
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Count int                `json:"count"`
	Total decimal.Decimal    `json:"total"`
}

// CartItemResponse is one priced cart line.
type CartItemResponse struct {
	ProductID int             `json:"id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func toCartResponse(v domain.CartView) CartResponse {
	items := make([]CartItemResponse, 0, len(v.Rows))
	for _, row := range v.Rows {
		items = append(items, CartItemResponse{
			ProductID: row.Product.ID,
			Title:     row.Product.Title,
			Quantity:  row.Quantity,
			UnitPrice: row.Product.Price,
			Subtotal:  row.Subtotal,
		})
	}
	return CartResponse{Items: items, Count: v.Count, Total: v.Total}
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products. It accepts the same q,
// category, max_price and sort parameters as the grid.
func (h *APIHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria := domain.ParseFilterCriteria(r.URL.Query())
	products := engine.Filter(h.catalog.All(), criteria)
	if products == nil {
		products = []domain.Product{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// GetProduct handles GET /api/v1/products/{id}
func (h *APIHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	product, found := h.catalog.Get(id)
	if !found {
		httputil.WriteError(w, r, apperrors.NotFound("product", chi.URLParam(r, "id")), h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// GetCart handles GET /api/v1/cart
func (h *APIHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	visitorID := middleware.VisitorIDFromContext(r.Context())
	h.writeCart(w, r, visitorID)
}

// AddItem handles POST /api/v1/cart/items
func (h *APIHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	visitorID := middleware.VisitorIDFromContext(r.Context())
	if _, err := h.carts.Add(r.Context(), visitorID, req.ProductID, quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, r, visitorID)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *APIHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	visitorID := middleware.VisitorIDFromContext(r.Context())
	if _, err := h.carts.SetQuantity(r.Context(), visitorID, productID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, r, visitorID)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *APIHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	visitorID := middleware.VisitorIDFromContext(r.Context())
	if _, err := h.carts.Remove(r.Context(), visitorID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, r, visitorID)
}

// ClearCart handles DELETE /api/v1/cart
func (h *APIHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), middleware.VisitorIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) writeCart(w http.ResponseWriter, r *http.Request, visitorID string) {
	view := h.carts.View(r.Context(), visitorID)
	w.Header().Set(headerCartCount, strconv.Itoa(view.Count))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(view)})
}

// decode reads and validates a JSON body, writing the 400 itself on failure.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}
