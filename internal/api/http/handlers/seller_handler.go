package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
)

// SellerHandler exposes product and order management for sellers.
type SellerHandler struct {
	products  *service.ProductService
	orders    *service.OrderService
	validator *dto.Validator
}

// NewSellerHandler constructs handler.
func NewSellerHandler(products *service.ProductService, orders *service.OrderService, validator *dto.Validator) *SellerHandler {
	return &SellerHandler{products: products, orders: orders, validator: validator}
}

// ListProducts handles GET /api/seller/products.
func (h *SellerHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.products.ListBySeller(c.UserContext(), currentIdentity(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, products)
}

// CreateProduct handles POST /api/seller/products.
func (h *SellerHandler) CreateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.UserContext(), currentIdentity(c), productInput(req))
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/seller/products/:id.
func (h *SellerHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.UserContext(), currentIdentity(c), id, productInput(req))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, product)
}

// UpdateOrderStatus handles PATCH /api/seller/orders/:id/status.
func (h *SellerHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateOrderStatusRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	order, err := h.orders.UpdateStatus(c.UserContext(), currentIdentity(c), id, domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewOrderResponse(order))
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
	}
}
