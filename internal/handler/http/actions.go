package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/litreads/internal/domain"
	apperrors "github.com/utafrali/litreads/pkg/errors"
	"github.com/utafrali/litreads/pkg/httputil"
	"github.com/utafrali/litreads/pkg/middleware"
)

// cartAction is the shape shared by the four cart form posts.
type cartAction func(r *http.Request, visitorID string) error

// AddToCart handles POST /cart/add. A missing quantity means one.
func (h *StorefrontHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.handleCartAction(w, r, func(r *http.Request, visitorID string) error {
		id, err := requiredInt(r, "id")
		if err != nil {
			return err
		}
		qty, err := optionalInt(r, "quantity", 1)
		if err != nil {
			return err
		}
		_, err = h.carts.Add(r.Context(), visitorID, id, qty)
		return err
	})
}

// AdjustCart handles POST /cart/adjust. A quantity of zero or less removes the line.
func (h *StorefrontHandler) AdjustCart(w http.ResponseWriter, r *http.Request) {
	h.handleCartAction(w, r, func(r *http.Request, visitorID string) error {
		id, err := requiredInt(r, "id")
		if err != nil {
			return err
		}
		qty, err := requiredInt(r, "quantity")
		if err != nil {
			return err
		}
		_, err = h.carts.SetQuantity(r.Context(), visitorID, id, qty)
		return err
	})
}

// RemoveFromCart handles POST /cart/remove.
func (h *StorefrontHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.handleCartAction(w, r, func(r *http.Request, visitorID string) error {
		id, err := requiredInt(r, "id")
		if err != nil {
			return err
		}
		_, err = h.carts.Remove(r.Context(), visitorID, id)
		return err
	})
}

// ClearCart handles POST /cart/clear.
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.handleCartAction(w, r, func(r *http.Request, visitorID string) error {
		return h.carts.Clear(r.Context(), visitorID)
	})
}

// handleCartAction runs fn and answers in one of two ways: htmx callers get
// the re-rendered cart fragment plus the badge count and a cart-updated
// trigger, plain form posts get a 303 back to the page they came from.
func (h *StorefrontHandler) handleCartAction(w http.ResponseWriter, r *http.Request, fn cartAction) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("malformed form body"))
		return
	}

	visitorID := middleware.VisitorIDFromContext(r.Context())
	if err := fn(r, visitorID); err != nil {
		h.writeError(w, r, err)
		return
	}

	if !httputil.IsFragmentRequest(r) {
		redirectBack(w, r, "/cart")
		return
	}

	w.Header().Set(headerTrigger, eventCartUpdated)
	h.writeCart(w, r, h.carts.View(r.Context(), visitorID))
}

// ToggleDarkMode handles POST /preferences/dark-mode. An explicit
// dark_mode=on|off sets the value; without it the current value flips.
func (h *StorefrontHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("malformed form body"))
		return
	}

	ctx := r.Context()
	visitorID := middleware.VisitorIDFromContext(ctx)

	var err error
	if raw := strings.TrimSpace(r.PostForm.Get("dark_mode")); raw != "" {
		_, err = h.prefs.SetDarkMode(ctx, visitorID, domain.ParseDarkMode(raw))
	} else {
		_, err = h.prefs.ToggleDarkMode(ctx, visitorID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if httputil.IsFragmentRequest(r) {
		w.Header().Set(headerRefresh, "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirectBack(w, r, "/")
}

// requiredInt reads a posted integer that must be present.
func requiredInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PostForm.Get(name))
	if raw == "" {
		return 0, apperrors.InvalidInput("missing " + name)
	}
	return parseInt(name, raw)
}

// optionalInt reads a posted integer, yielding def when the field is blank.
func optionalInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.PostForm.Get(name))
	if raw == "" {
		return def, nil
	}
	return parseInt(name, raw)
}

func parseInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + name + ": " + raw)
	}
	return n, nil
}
