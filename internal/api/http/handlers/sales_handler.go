package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/service"
)

// SalesHandler reports seller sales.
type SalesHandler struct {
	sales *service.SalesService
}

// NewSalesHandler constructs handler.
func NewSalesHandler(sales *service.SalesService) *SalesHandler {
	return &SalesHandler{sales: sales}
}

// Stats handles GET /api/sales/stats.
func (h *SalesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.sales.Stats(c.UserContext(), currentIdentity(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewSalesStatResponses(stats))
}
