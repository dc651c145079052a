package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/shopmate/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is a cart line as it was at checkout time.
type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderPlacedEvent is emitted after a successful checkout.
type OrderPlacedEvent struct {
	OrderID   uuid.UUID       `json:"order_id"`
	Lines     []OrderLine     `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	PlacedAt  time.Time       `json:"placed_at"`
}

func (o OrderPlacedEvent) Subject() string {
	return messaging.OrdersPlacedSubject
}

func (o OrderPlacedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
