// Package event publishes storefront domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/litreads/internal/domain"
	pkgkafka "github.com/utafrali/litreads/pkg/kafka"
	"github.com/utafrali/litreads/pkg/logger"
)

// Topics.
const (
	TopicCart     = "litreads.cart"
	TopicCheckout = "litreads.checkout"
)

// Event types.
const (
	TypeCartUpdated       = "cart.updated"
	TypeCartCleared       = "cart.cleared"
	TypeCheckoutCompleted = "checkout.completed"
)

// SourceStorefront identifies events emitted by this service.
const SourceStorefront = "storefront"

// CartLineData is one persisted cart line.
type CartLineData struct {
	ProductID int `json:"id"`
	Quantity  int `json:"quantity"`
}

// CartUpdatedData is the payload of cart.updated.
type CartUpdatedData struct {
	VisitorID string         `json:"visitor_id"`
	Lines     []CartLineData `json:"lines"`
	ItemCount int            `json:"item_count"`
}

// CartClearedData is the payload of cart.cleared.
type CartClearedData struct {
	VisitorID string `json:"visitor_id"`
}

// CheckoutCompletedData is the payload of checkout.completed.
type CheckoutCompletedData struct {
	VisitorID string         `json:"visitor_id"`
	FullName  string         `json:"full_name"`
	Email     string         `json:"email"`
	City      string         `json:"city"`
	Lines     []CartLineData `json:"lines"`
	ItemCount int            `json:"item_count"`
	Total     string         `json:"total"`
}

// Publisher is satisfied by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer turns storefront changes into Kafka events keyed by visitor id,
// so all events for a visitor land on one partition in order.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishCartUpdated publishes cart.updated.
func (p *Producer) PublishCartUpdated(ctx context.Context, visitorID string, cart domain.Cart) error {
	data := CartUpdatedData{
		VisitorID: visitorID,
		Lines:     linesOf(cart),
		ItemCount: cart.Count(),
	}
	if err := p.publish(ctx, TopicCart, TypeCartUpdated, visitorID, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("visitor_id", visitorID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes cart.cleared.
func (p *Producer) PublishCartCleared(ctx context.Context, visitorID string) error {
	if err := p.publish(ctx, TopicCart, TypeCartCleared, visitorID, CartClearedData{VisitorID: visitorID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event", slog.String("visitor_id", visitorID))
	return nil
}

// PublishCheckoutCompleted publishes checkout.completed.
func (p *Producer) PublishCheckoutCompleted(ctx context.Context, visitorID string, form domain.CheckoutForm, cart domain.CartView) error {
	lines := make([]CartLineData, 0, len(cart.Rows))
	for _, r := range cart.Rows {
		lines = append(lines, CartLineData{ProductID: r.Product.ID, Quantity: r.Quantity})
	}
	data := CheckoutCompletedData{
		VisitorID: visitorID,
		FullName:  form.FullName,
		Email:     form.Email,
		City:      form.City,
		Lines:     lines,
		ItemCount: cart.Count,
		Total:     cart.Total.StringFixed(2),
	}
	if err := p.publish(ctx, TopicCheckout, TypeCheckoutCompleted, visitorID, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published checkout.completed event",
		slog.String("visitor_id", visitorID),
		slog.String("total", data.Total),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, eventType, visitorID string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, visitorID, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

func linesOf(c domain.Cart) []CartLineData {
	out := make([]CartLineData, 0, len(c.Lines))
	for _, l := range c.Lines {
		out = append(out, CartLineData{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}
