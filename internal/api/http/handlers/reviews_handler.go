package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/service"
)

// ReviewsHandler exposes product reviews.
type ReviewsHandler struct {
	reviews   *service.ReviewService
	validator *dto.Validator
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(reviews *service.ReviewService, validator *dto.Validator) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews, validator: validator}
}

// Create handles POST /api/reviews.
func (h *ReviewsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReviewRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	review, err := h.reviews.Create(c.UserContext(), currentIdentity(c), service.ReviewInput{
		ProductID: req.ProductID,
		Content:   req.Content,
		Rating:    req.Rating,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewReviewResponse(review))
}

// ListByProduct handles GET /api/reviews/product/:productId.
func (h *ReviewsHandler) ListByProduct(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}
	reviews, err := h.reviews.ListByProduct(c.UserContext(), productID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewReviewResponses(reviews))
}

// Delete handles DELETE /api/reviews/:id.
func (h *ReviewsHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.reviews.Delete(c.UserContext(), currentIdentity(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
