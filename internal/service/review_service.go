package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// ReviewService manages product reviews. Only buyers may review.
type ReviewService struct {
	reviews    repository.ReviewRepository
	orders     repository.OrderRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ReviewDependencies bundles collaborators for the review service.
type ReviewDependencies struct {
	ReviewRepo  repository.ReviewRepository
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ReviewInput describes a new review.
type ReviewInput struct {
	ProductID int64
	Content   string
	Rating    int
}

// NewReviewService constructs the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	return &ReviewService{
		reviews:    deps.ReviewRepo,
		orders:     deps.OrderRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
	}
}

// Create stores a review and refreshes the product rating.
func (s *ReviewService) Create(ctx context.Context, identity *domain.Identity, input ReviewInput) (*domain.Review, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(input.Content)
	details := map[string]any{}
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		details["rating"] = "must be between 1 and 5"
	}
	if content == "" {
		details["content"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid review", details)
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, notFound(err, "product", input.ProductID)
	}
	purchased, err := s.orders.HasPurchased(ctx, identity.UserID, input.ProductID, domain.PurchasedStatuses)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, ErrPurchaseRequired
	}

	review := &domain.Review{
		ProductID: input.ProductID,
		UserID:    identity.UserID,
		Content:   content,
		Rating:    input.Rating,
	}
	if err := s.reviews.CreateWithRating(ctx, review); err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventReviewCreated, identity.UserID, events.ReviewPayload{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
	}))
	return review, nil
}

// ListByProduct returns reviews of a product, newest first.
func (s *ReviewService) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, notFound(err, "product", productID)
	}
	return s.reviews.ListByProduct(ctx, productID)
}

// Delete removes a review written by the caller.
func (s *ReviewService) Delete(ctx context.Context, identity *domain.Identity, reviewID int64) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return notFound(err, "review", reviewID)
	}
	if review.UserID != identity.UserID {
		return apperrors.NewForbidden("review belongs to another user")
	}
	if err := s.reviews.DeleteWithRating(ctx, review); err != nil {
		return notFound(err, "review", reviewID)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventReviewDeleted, identity.UserID, events.ReviewPayload{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
	}))
	return nil
}
