package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/internal/view"
	apperrors "github.com/utafrali/litreads/pkg/errors"
	"github.com/utafrali/litreads/pkg/httputil"
	"github.com/utafrali/litreads/pkg/middleware"
	"github.com/utafrali/litreads/pkg/validator"
)

// SubmitCheckout handles POST /checkout. A valid order empties the cart and
// shows the confirmation with a reset form.
func (h *StorefrontHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("malformed form body"))
		return
	}
	ctx := r.Context()
	visitorID := middleware.VisitorIDFromContext(ctx)

	order, err := h.forms.SubmitCheckout(ctx, visitorID, domain.CheckoutFormFrom(r.PostForm))
	if state, ok := invalidState(r.PostForm, err); ok {
		content := view.CheckoutContent{Cart: h.carts.View(ctx, visitorID), Form: state}
		h.writePage(w, r, http.StatusUnprocessableEntity, view.PageCheckout,
			h.layout(r, "Checkout", view.PageCheckout, content))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	content := view.CheckoutContent{Form: view.Confirmed(), Order: order}
	h.writePage(w, r, http.StatusOK, view.PageCheckout,
		h.layout(r, "Order placed", view.PageCheckout, content))
}

// SubmitContact handles POST /contact.
func (h *StorefrontHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("malformed form body"))
		return
	}

	err := h.forms.SubmitContact(r.Context(), domain.ContactFormFrom(r.PostForm))
	if state, ok := invalidState(r.PostForm, err); ok {
		h.writePage(w, r, http.StatusUnprocessableEntity, view.PageContact,
			h.layout(r, "Contact", view.PageContact, view.ContactContent{Form: state}))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writePage(w, r, http.StatusOK, view.PageContact,
		h.layout(r, "Contact", view.PageContact, view.ContactContent{Form: view.Confirmed()}))
}

// SubmitNewsletter handles POST /newsletter. htmx swaps only the footer
// form; a plain post lands on the home page with the footer state filled in.
func (h *StorefrontHandler) SubmitNewsletter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("malformed form body"))
		return
	}

	status, state := http.StatusOK, view.Confirmed()
	err := h.forms.SubmitNewsletter(r.Context(), domain.NewsletterFormFrom(r.PostForm))
	if invalid, ok := invalidState(r.PostForm, err); ok {
		status, state = http.StatusUnprocessableEntity, invalid
	} else if err != nil {
		h.writeError(w, r, err)
		return
	}

	if httputil.IsFragmentRequest(r) {
		h.writeFragment(w, r, status, view.FragmentNewsletter, state)
		return
	}
	data := h.layout(r, "LitReads", view.PageHome, h.homeContent())
	data.Newsletter = state
	h.writePage(w, r, status, view.PageHome, data)
}

// invalidState turns a validation failure into the re-render model of the
// submitted form.
func invalidState(posted url.Values, err error) (view.FormState, bool) {
	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		return view.FormState{}, false
	}
	values := make(map[string]string, len(posted))
	for name := range posted {
		values[name] = strings.TrimSpace(posted.Get(name))
	}
	return view.Invalid(values, verr), true
}
