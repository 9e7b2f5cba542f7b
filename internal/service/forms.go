package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/pkg/validator"
)

// Form names used in logs and metrics.
const (
	FormCheckout   = "checkout"
	FormContact    = "contact"
	FormNewsletter = "newsletter"
)

// FormService validates the storefront's simulated forms. Nothing is sent
// anywhere; a valid checkout empties the cart.
type FormService struct {
	carts    *CartService
	notifier Notifier
	logger   *slog.Logger
}

// NewFormService creates a form service.
func NewFormService(carts *CartService, notifier Notifier, logger *slog.Logger) *FormService {
	return &FormService{carts: carts, notifier: notifier, logger: logger}
}

// SubmitCheckout validates form, clears the visitor's cart and returns the
// cart as it was at submission. Validation failures are *validator.ValidationError.
func (s *FormService) SubmitCheckout(ctx context.Context, visitorID string, form domain.CheckoutForm) (domain.CartView, error) {
	if err := validator.Validate(form); err != nil {
		formSubmissionsTotal.WithLabelValues(FormCheckout, outcomeInvalid).Inc()
		return domain.CartView{}, err
	}

	order := s.carts.View(ctx, visitorID)
	if err := s.carts.Clear(ctx, visitorID); err != nil {
		formSubmissionsTotal.WithLabelValues(FormCheckout, outcomeError).Inc()
		return domain.CartView{}, fmt.Errorf("complete checkout: %w", err)
	}
	formSubmissionsTotal.WithLabelValues(FormCheckout, outcomeOK).Inc()

	s.logger.InfoContext(ctx, "checkout submitted",
		slog.String("visitor_id", visitorID),
		slog.Int("item_count", order.Count),
		slog.String("total", order.Total.StringFixed(2)),
	)
	if err := s.notifier.PublishCheckoutCompleted(ctx, visitorID, form, order); err != nil {
		s.logger.WarnContext(ctx, "failed to publish checkout.completed event",
			slog.String("visitor_id", visitorID),
			slog.String("error", err.Error()),
		)
	}
	return order, nil
}

// SubmitContact validates a contact message.
func (s *FormService) SubmitContact(ctx context.Context, form domain.ContactForm) error {
	return s.simulate(ctx, FormContact, form)
}

// SubmitNewsletter validates a newsletter signup.
func (s *FormService) SubmitNewsletter(ctx context.Context, form domain.NewsletterForm) error {
	return s.simulate(ctx, FormNewsletter, form)
}

func (s *FormService) simulate(ctx context.Context, name string, form any) error {
	if err := validator.Validate(form); err != nil {
		formSubmissionsTotal.WithLabelValues(name, outcomeInvalid).Inc()
		return err
	}
	formSubmissionsTotal.WithLabelValues(name, outcomeOK).Inc()
	s.logger.InfoContext(ctx, "form submitted", slog.String("form", name))
	return nil
}
