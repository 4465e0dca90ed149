package event

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated     = pkgkafka.Topic(AggregateTypeCart, "updated")
	TopicCartCleared     = pkgkafka.Topic(AggregateTypeCart, "cleared")
	TopicWishlistUpdated = pkgkafka.Topic(AggregateTypeWishlist, "updated")
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	ClientID  string         `json:"client_id"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  string         `json:"subtotal"`
	Total     string         `json:"total"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID          int     `json:"product_id"`
	Title              string  `json:"title"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Quantity           int     `json:"quantity"`
	LineTotal          string  `json:"line_total"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	ClientID string `json:"client_id"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	ClientID   string `json:"client_id"`
	ProductIDs []int  `json:"product_ids"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// CartUpdated publishes a cart.updated event.
func (p *Producer) CartUpdated(ctx context.Context, client string, cart *domain.Cart, version int64) error {
	items := make([]CartItemData, len(cart.Entries))
	for i, e := range cart.Entries {
		items[i] = CartItemData{
			ProductID:          e.ID,
			Title:              e.Title,
			Price:              e.Price,
			DiscountPercentage: e.DiscountPercentage,
			Quantity:           e.Quantity,
			LineTotal:          domain.Money(e.LineTotal()),
		}
	}

	totals := cart.Totals()
	data := CartUpdatedData{
		ClientID:  client,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Subtotal:  domain.Money(totals.Subtotal),
		Total:     domain.Money(totals.Total),
	}
	return p.publish(ctx, TopicCartUpdated, "cart.updated", client, AggregateTypeCart, version, data)
}

// CartCleared publishes a cart.cleared event.
func (p *Producer) CartCleared(ctx context.Context, client string, version int64) error {
	return p.publish(ctx, TopicCartCleared, "cart.cleared", client, AggregateTypeCart, version, CartClearedData{ClientID: client})
}

// WishlistUpdated publishes a wishlist.updated event.
func (p *Producer) WishlistUpdated(ctx context.Context, client string, ids []int, version int64) error {
	if ids == nil {
		ids = []int{}
	}
	data := WishlistUpdatedData{ClientID: client, ProductIDs: ids}
	return p.publish(ctx, TopicWishlistUpdated, "wishlist.updated", client, AggregateTypeWishlist, version, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, client, aggregate string, version int64, data any) error {
	event, err := pkgkafka.NewEvent(eventType, client, aggregate, SourceStorefront, version, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		event.WithMetadata("trace_id", sc.TraceID().String())
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event",
		slog.String("client_id", client),
		slog.Int64("version", version),
	)
	return nil
}

// Nop discards every event. It is used when events are disabled.
type Nop struct{}

func (Nop) CartUpdated(context.Context, string, *domain.Cart, int64) error { return nil }
func (Nop) CartCleared(context.Context, string, int64) error               { return nil }
func (Nop) WishlistUpdated(context.Context, string, []int, int64) error    { return nil }
