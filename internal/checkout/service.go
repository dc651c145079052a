// Package checkout turns the current cart into a placed order.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/shopmate/internal/cart"
	shoperrors "github.com/abgdnv/shopmate/internal/errors"
	"github.com/abgdnv/shopmate/internal/metrics"
	"github.com/abgdnv/shopmate/pkg/messaging"
	"github.com/abgdnv/shopmate/pkg/messaging/events"
	"github.com/google/uuid"
)

// Cart is the part of cart.Store checkout works with.
type Cart interface {
	Snapshot() cart.Snapshot
	ClearIfVersion(version uint64) bool
}

type Service struct {
	cart      Cart
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(c Cart, publisher messaging.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		cart:      c,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With("component", "checkout"),
		now:       time.Now,
	}
}

// PlaceOrder publishes an order for the current cart and empties the cart.
// Returns ErrCartEmpty for an empty cart and ErrOrderNotPublished when the event could not be
// delivered; in both cases the cart is left untouched.
func (s *Service) PlaceOrder(ctx context.Context) (*events.OrderPlacedEvent, error) {
	snap := s.cart.Snapshot()
	if len(snap.Lines) == 0 {
		s.metrics.IncCheckout("empty")
		return nil, shoperrors.ErrCartEmpty
	}

	order := newOrder(snap, s.now().UTC())
	if err := s.publisher.Publish(ctx, order); err != nil {
		s.metrics.IncCheckout("failure")
		s.logger.ErrorContext(ctx, "failed to publish order", "order_id", order.OrderID, "error", err)
		return nil, fmt.Errorf("%w: %w", shoperrors.ErrOrderNotPublished, err)
	}

	if !s.cart.ClearIfVersion(snap.Version) {
		s.logger.WarnContext(ctx, "cart changed during checkout, keeping its contents", "order_id", order.OrderID)
	}
	s.metrics.IncCheckout("success")
	s.logger.InfoContext(ctx, "order placed", "order_id", order.OrderID, "item_count", order.ItemCount, "total", order.Total.String())
	return &order, nil
}

func newOrder(snap cart.Snapshot, placedAt time.Time) events.OrderPlacedEvent {
	lines := make([]events.OrderLine, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, events.OrderLine{
			ProductID: int64(l.ProductID),
			Title:     l.Title,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return events.OrderPlacedEvent{
		OrderID:   uuid.New(),
		Lines:     lines,
		ItemCount: snap.ItemCount(),
		Total:     snap.Total(),
		PlacedAt:  placedAt,
	}
}
