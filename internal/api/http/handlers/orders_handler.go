package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/service"
)

// OrdersHandler exposes customer order endpoints.
type OrdersHandler struct {
	orders    *service.OrderService
	validator *dto.Validator
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService, validator *dto.Validator) *OrdersHandler {
	return &OrdersHandler{orders: orders, validator: validator}
}

// Create handles POST /api/orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	order, err := h.orders.Create(c.UserContext(), currentIdentity(c), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewOrderResponse(order))
}

// ListMine handles GET /api/orders/my.
func (h *OrdersHandler) ListMine(c *fiber.Ctx) error {
	orders, err := h.orders.ListMine(c.UserContext(), currentIdentity(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewOrderResponses(orders))
}

// Cancel handles PATCH /api/orders/:id/cancel and DELETE /api/orders/:id.
func (h *OrdersHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.Cancel(c.UserContext(), currentIdentity(c), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewOrderResponse(order))
}
