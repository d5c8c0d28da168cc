package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated   = "order_created"
	TypeOrderCancelled = "order_cancelled"
	TypeOrderStatus    = "order_status_changed"
)

type OrderLine struct {
	VariantID uuid.UUID `json:"variant_id"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
}

type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    uuid.UUID   `json:"order_id"`
	UserID     uuid.UUID   `json:"user_id"`
	Status     string      `json:"status"`
	Total      int64       `json:"total"`
	Lines      []OrderLine `json:"lines,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
