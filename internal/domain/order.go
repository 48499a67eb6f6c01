package domain

import "time"

// OrderStatus enumerates lifecycle states for orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipping  OrderStatus = "SHIPPING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// PurchasedStatuses are the states that count as a completed purchase for reviews.
var PurchasedStatuses = []OrderStatus{OrderStatusPaid, OrderStatusShipping, OrderStatusDelivered}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a single-product purchase.
type Order struct {
	ID         int64
	UserID     int64
	ProductID  int64
	Quantity   int
	TotalPrice int64
	Status     OrderStatus
	OrderDate  time.Time
	UpdatedAt  time.Time

	// ProductName is filled by listing queries.
	ProductName string
}
