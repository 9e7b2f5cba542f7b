package event

import (
	"context"

	"github.com/utafrali/litreads/internal/domain"
)

// Noop drops every event. Used when EVENTS_ENABLED is false.
type Noop struct{}

func (Noop) PublishCartUpdated(context.Context, string, domain.Cart) error { return nil }

func (Noop) PublishCartCleared(context.Context, string) error { return nil }

func (Noop) PublishCheckoutCompleted(context.Context, string, domain.CheckoutForm, domain.CartView) error {
	return nil
}
