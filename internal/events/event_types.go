package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderPlaced        EventType = "order_placed"
	EventOrderCancelled     EventType = "order_cancelled"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventReviewCreated      EventType = "review_created"
	EventReviewDeleted      EventType = "review_deleted"
	EventProductChanged     EventType = "product_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actorID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// OrderPayload is carried by order_placed and order_cancelled.
type OrderPayload struct {
	OrderID    int64 `json:"order_id"`
	ProductID  int64 `json:"product_id"`
	Quantity   int   `json:"quantity"`
	TotalPrice int64 `json:"total_price"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OrderID   int64              `json:"order_id"`
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// ReviewPayload is carried by review_created and review_deleted.
type ReviewPayload struct {
	ReviewID  int64 `json:"review_id"`
	ProductID int64 `json:"product_id"`
	Rating    int   `json:"rating"`
}

// ProductChangedPayload payload.
type ProductChangedPayload struct {
	ProductID int64  `json:"product_id"`
	Category  string `json:"category,omitempty"`
}

// ProductIDOf extracts the product an event touches, if any.
func ProductIDOf(event Event) (int64, bool) {
	switch p := event.Payload.(type) {
	case ReviewPayload:
		return p.ProductID, true
	case ProductChangedPayload:
		return p.ProductID, true
	case OrderPayload:
		return p.ProductID, true
	default:
		return 0, false
	}
}
