package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// OrderService places and tracks orders.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		orders:     deps.OrderRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
	}
}

// Create places an order for quantity units of a product. Payment is out of
// scope, so orders start as PAID.
func (s *OrderService) Create(ctx context.Context, identity *domain.Identity, productID int64, quantity int) (*domain.Order, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if quantity < 1 || quantity > domain.MaxOrderQuantity {
		return nil, apperrors.NewValidationError("invalid order", map[string]any{
			"quantity": fmt.Sprintf("must be between 1 and %d", domain.MaxOrderQuantity),
		})
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product", productID)
	}

	if product.Price > math.MaxInt64/int64(quantity) {
		return nil, apperrors.NewValidationError("invalid order", map[string]any{"quantity": "order total is too large"})
	}

	order := &domain.Order{
		UserID:      identity.UserID,
		ProductID:   product.ID,
		Quantity:    quantity,
		TotalPrice:  product.Price * int64(quantity),
		Status:      domain.OrderStatusPaid,
		ProductName: product.Name,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventOrderPlaced, identity.UserID, orderPayload(order)))
	return order, nil
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, identity *domain.Identity) ([]domain.Order, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, identity.UserID)
}

// Cancel cancels one of the caller's orders. Ownership is checked regardless of role.
func (s *OrderService) Cancel(ctx context.Context, identity *domain.Identity, orderID int64) (*domain.Order, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order", orderID)
	}
	if order.UserID != identity.UserID {
		return nil, apperrors.NewForbidden("order belongs to another user")
	}
	switch order.Status {
	case domain.OrderStatusCancelled:
		return nil, apperrors.NewConflict("order already cancelled", map[string]any{"status": order.Status})
	case domain.OrderStatusDelivered:
		return nil, apperrors.NewConflict("delivered orders cannot be cancelled", map[string]any{"status": order.Status})
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status, domain.OrderStatusCancelled); err != nil {
		return nil, statusConflict(err, orderID)
	}
	order.Status = domain.OrderStatusCancelled

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventOrderCancelled, identity.UserID, orderPayload(order)))
	return order, nil
}

// UpdateStatus moves an order along; only the seller of the ordered product may.
func (s *OrderService) UpdateStatus(ctx context.Context, identity *domain.Identity, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid order status", map[string]any{"status": status})
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order", orderID)
	}
	product, err := s.products.GetByID(ctx, order.ProductID)
	if err != nil {
		return nil, notFound(err, "product", order.ProductID)
	}
	if product.SellerID != identity.UserID {
		return nil, apperrors.NewForbidden("order is for another seller's product")
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, apperrors.NewConflict("cancelled orders are final", nil)
	}
	if order.Status == status {
		return order, nil
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, order.Status, status); err != nil {
		return nil, statusConflict(err, orderID)
	}
	previous := order.Status
	order.Status = status

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventOrderStatusChanged, identity.UserID, events.OrderStatusChangedPayload{
		OrderID:   order.ID,
		OldStatus: previous,
		NewStatus: status,
	}))
	return order, nil
}

// statusConflict reports a lost race on the order status as 409.
func statusConflict(err error, orderID int64) error {
	if errors.Is(err, repository.ErrStatusConflict) {
		return apperrors.NewConflict("order status changed, reload and retry", map[string]any{"id": orderID})
	}
	return notFound(err, "order", orderID)
}

func orderPayload(order *domain.Order) events.OrderPayload {
	return events.OrderPayload{
		OrderID:    order.ID,
		ProductID:  order.ProductID,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice,
	}
}
