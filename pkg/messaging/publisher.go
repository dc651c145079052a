// Package messaging defines the outbound event contract used by the shop.
package messaging

import (
	"context"
	"log/slog"
)

// OrdersPlacedSubject is the subject checkout events are published on.
const OrdersPlacedSubject = "orders.placed"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the logger instead of a broker.
// Used when no message broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "log_publisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	data, err := event.Payload()
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "event published", slog.String("subject", event.Subject()), slog.String("payload", string(data)))
	return nil
}
