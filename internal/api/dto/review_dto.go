package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// CreateReviewRequest payload.
type CreateReviewRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gte=1"`
	Content   string `json:"content" validate:"required,max=2000"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
}

// ReviewResponse view.
type ReviewResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReviewResponse maps a review.
func NewReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Content:   r.Content,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
}

// NewReviewResponses maps a list of reviews.
func NewReviewResponses(reviews []domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, NewReviewResponse(&reviews[i]))
	}
	return out
}

// SalesStatResponse view.
type SalesStatResponse struct {
	ProductID     int64   `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalSales    int64   `json:"total_sales"`
	AverageRating float64 `json:"average_rating"`
}

// NewSalesStatResponses maps seller stats.
func NewSalesStatResponses(stats []domain.SalesStat) []SalesStatResponse {
	out := make([]SalesStatResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, SalesStatResponse(s))
	}
	return out
}
