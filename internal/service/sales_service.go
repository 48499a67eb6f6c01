package service

import (
	"context"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// SalesService reports per-product sales for sellers.
type SalesService struct {
	orders repository.OrderRepository
}

// NewSalesService constructs the service.
func NewSalesService(orders repository.OrderRepository) *SalesService {
	return &SalesService{orders: orders}
}

// Stats aggregates non-cancelled orders across the caller's products.
func (s *SalesService) Stats(ctx context.Context, identity *domain.Identity) ([]domain.SalesStat, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	return s.orders.SalesStatsBySeller(ctx, identity.UserID)
}
