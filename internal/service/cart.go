package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/internal/repository"
	apperrors "github.com/utafrali/litreads/pkg/errors"
	"github.com/utafrali/litreads/pkg/tracing"
)

// ProductLookup resolves catalog products. *catalog.Catalog satisfies it.
type ProductLookup interface {
	Get(id int) (domain.Product, bool)
	Has(id int) bool
}

// Notifier receives storefront events. Failures are logged, never surfaced
// to the visitor.
type Notifier interface {
	PublishCartUpdated(ctx context.Context, visitorID string, cart domain.Cart) error
	PublishCartCleared(ctx context.Context, visitorID string) error
	PublishCheckoutCompleted(ctx context.Context, visitorID string, form domain.CheckoutForm, cart domain.CartView) error
}

// CartService owns the persisted cart of each visitor.
type CartService struct {
	store    repository.Store
	products ProductLookup
	notifier Notifier
	logger   *slog.Logger
}

// NewCartService creates a cart service.
func NewCartService(store repository.Store, products ProductLookup, notifier Notifier, logger *slog.Logger) *CartService {
	return &CartService{
		store:    store,
		products: products,
		notifier: notifier,
		logger:   logger,
	}
}

// Load returns the visitor's cart. It never fails: missing, unreadable or
// corrupt state yields an empty cart. Non-positive lines, duplicates and
// lines for products no longer in the catalog are repaired away.
func (s *CartService) Load(ctx context.Context, visitorID string) domain.Cart {
	if visitorID == "" {
		return domain.Cart{}
	}

	data, err := s.store.Get(ctx, visitorID, domain.CartKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			cartLoadFallbacksTotal.WithLabelValues("unavailable").Inc()
			s.logger.WarnContext(ctx, "cart storage unreadable, using empty cart",
				slog.String("visitor_id", visitorID),
				slog.String("error", err.Error()),
			)
		}
		return domain.Cart{}
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		cartLoadFallbacksTotal.WithLabelValues("corrupt").Inc()
		s.logger.WarnContext(ctx, "persisted cart is corrupt, using empty cart",
			slog.String("visitor_id", visitorID),
			slog.String("error", apperrors.Corrupt("cart", err).Error()),
		)
		return domain.Cart{}
	}

	if cart.Normalize(s.products.Has) {
		cartLoadFallbacksTotal.WithLabelValues("repaired").Inc()
		s.logger.DebugContext(ctx, "repaired persisted cart", slog.String("visitor_id", visitorID))
	}
	return cart
}

// Add puts quantity units of productID into the cart, merging with an
// existing line.
func (s *CartService) Add(ctx context.Context, visitorID string, productID, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		cartMutationsTotal.WithLabelValues("add", outcomeInvalid).Inc()
		return domain.Cart{}, apperrors.InvalidInput("quantity must be at least 1")
	}
	if !s.products.Has(productID) {
		cartMutationsTotal.WithLabelValues("add", outcomeInvalid).Inc()
		return domain.Cart{}, apperrors.NotFound("product", strconv.Itoa(productID))
	}

	return s.mutate(ctx, "add", visitorID, func(c *domain.Cart) (bool, error) {
		if err := c.Add(productID, quantity); err != nil {
			return false, apperrors.InvalidInput(err.Error())
		}
		return true, nil
	})
}

// SetQuantity replaces the quantity of an existing line. Zero or less
// removes it; an absent line is left alone.
func (s *CartService) SetQuantity(ctx context.Context, visitorID string, productID, quantity int) (domain.Cart, error) {
	return s.mutate(ctx, "set_quantity", visitorID, func(c *domain.Cart) (bool, error) {
		changed, err := c.SetQuantity(productID, quantity)
		if err != nil {
			return false, apperrors.InvalidInput(err.Error())
		}
		return changed, nil
	})
}

// Remove deletes the line for productID if present.
func (s *CartService) Remove(ctx context.Context, visitorID string, productID int) (domain.Cart, error) {
	return s.mutate(ctx, "remove", visitorID, func(c *domain.Cart) (bool, error) {
		return c.Remove(productID), nil
	})
}

// Clear drops the persisted cart.
func (s *CartService) Clear(ctx context.Context, visitorID string) (err error) {
	ctx, span := tracing.Start(ctx, "cart", "Clear")
	defer func() { tracing.End(span, err) }()

	if visitorID == "" {
		return apperrors.InvalidInput("visitor id is required")
	}
	if err := s.store.Delete(ctx, visitorID, domain.CartKey); err != nil {
		cartMutationsTotal.WithLabelValues("clear", outcomeError).Inc()
		return fmt.Errorf("clear cart: %w", err)
	}
	cartMutationsTotal.WithLabelValues("clear", outcomeOK).Inc()

	if err := s.notifier.PublishCartCleared(ctx, visitorID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart.cleared event",
			slog.String("visitor_id", visitorID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Count is the badge number: the sum of quantities of resolvable lines.
func (s *CartService) Count(ctx context.Context, visitorID string) int {
	c := s.Load(ctx, visitorID)
	return c.Count()
}

// View loads and prices the visitor's cart.
func (s *CartService) View(ctx context.Context, visitorID string) domain.CartView {
	return s.Price(s.Load(ctx, visitorID))
}

// Price joins cart lines with catalog products.
func (s *CartService) Price(c domain.Cart) domain.CartView {
	return domain.PriceCart(c, s.products.Get)
}

// mutate is the read-modify-write cycle shared by all line operations. The
// cart is persisted and announced only when fn reports a change.
func (s *CartService) mutate(ctx context.Context, op, visitorID string, fn func(*domain.Cart) (bool, error)) (_ domain.Cart, err error) {
	ctx, span := tracing.Start(ctx, "cart", op)
	defer func() { tracing.End(span, err) }()

	if visitorID == "" {
		return domain.Cart{}, apperrors.InvalidInput("visitor id is required")
	}

	cart := s.Load(ctx, visitorID)
	changed, err := fn(&cart)
	if err != nil {
		cartMutationsTotal.WithLabelValues(op, outcomeInvalid).Inc()
		return domain.Cart{}, err
	}
	if !changed {
		cartMutationsTotal.WithLabelValues(op, outcomeNoop).Inc()
		return cart, nil
	}

	if err := s.save(ctx, visitorID, cart); err != nil {
		cartMutationsTotal.WithLabelValues(op, outcomeError).Inc()
		return domain.Cart{}, err
	}
	cartMutationsTotal.WithLabelValues(op, outcomeOK).Inc()

	if err := s.notifier.PublishCartUpdated(ctx, visitorID, cart); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart.updated event",
			slog.String("visitor_id", visitorID),
			slog.String("error", err.Error()),
		)
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, visitorID string, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.store.Set(ctx, visitorID, domain.CartKey, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
