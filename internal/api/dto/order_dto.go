package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gte=1"`
	Quantity  int   `json:"quantity" validate:"required,gte=1,max=1000"`
}

// UpdateOrderStatusRequest payload for sellers.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID SHIPPING DELIVERED CANCELLED"`
}

// OrderResponse view.
type OrderResponse struct {
	ID          int64              `json:"id"`
	ProductID   int64              `json:"product_id"`
	ProductName string             `json:"product_name"`
	Quantity    int                `json:"quantity"`
	TotalPrice  int64              `json:"total_price"`
	Status      domain.OrderStatus `json:"status"`
	OrderDate   time.Time          `json:"order_date"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewOrderResponse maps an order.
func NewOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
		TotalPrice:  o.TotalPrice,
		Status:      o.Status,
		OrderDate:   o.OrderDate,
		UpdatedAt:   o.UpdatedAt,
	}
}

// NewOrderResponses maps a list of orders.
func NewOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
