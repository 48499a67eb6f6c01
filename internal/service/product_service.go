package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/cache"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// ProductService serves the public catalogue and seller product management.
type ProductService struct {
	products   repository.ProductRepository
	cache      *cache.ProductCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	Cache       *cache.ProductCache
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name        string
	Description string
	Category    string
	ImageURL    string
	Price       int64
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	c := deps.Cache
	if c == nil {
		c = cache.NewProductCache(nil, 0, nil)
	}
	return &ProductService{
		products:   deps.ProductRepo,
		cache:      c,
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
	}
}

// List returns the catalogue, optionally narrowed to one category.
func (s *ProductService) List(ctx context.Context, category string) ([]domain.Product, error) {
	category = strings.TrimSpace(category)
	if products, ok := s.cache.GetList(ctx, category); ok {
		return products, nil
	}
	gen := s.cache.Generation(ctx)
	products, err := s.products.List(ctx, repository.ProductFilter{Category: category})
	if err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, gen, category, products)
	return products, nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if product, ok := s.cache.GetProduct(ctx, id); ok {
		return product, nil
	}
	gen := s.cache.Generation(ctx)
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	s.cache.SetProduct(ctx, gen, product)
	return product, nil
}

// ListBySeller returns the caller's own products, bypassing the cache.
func (s *ProductService) ListBySeller(ctx context.Context, identity *domain.Identity) ([]domain.Product, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	sellerID := identity.UserID
	return s.products.List(ctx, repository.ProductFilter{SellerID: &sellerID})
}

// Create lists a new product owned by the caller.
func (s *ProductService) Create(ctx context.Context, identity *domain.Identity, input ProductInput) (*domain.Product, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product := &domain.Product{SellerID: identity.UserID}
	applyProductInput(product, input)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publishChanged(ctx, identity, product)
	return product, nil
}

// Update edits a product; only its seller may do so.
func (s *ProductService) Update(ctx context.Context, identity *domain.Identity, id int64, input ProductInput) (*domain.Product, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	if product.SellerID != identity.UserID {
		return nil, apperrors.NewForbidden("product belongs to another seller")
	}
	applyProductInput(product, input)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFound(err, "product", id)
	}
	s.publishChanged(ctx, identity, product)
	return product, nil
}

func (s *ProductService) publishChanged(ctx context.Context, identity *domain.Identity, product *domain.Product) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventProductChanged, identity.UserID, events.ProductChangedPayload{
		ProductID: product.ID,
		Category:  product.Category,
	}))
}

func validateProductInput(input ProductInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "is required"
	}
	switch {
	case input.Price < 0:
		details["price"] = "must not be negative"
	case input.Price > domain.MaxPrice:
		details["price"] = fmt.Sprintf("must be at most %d", domain.MaxPrice)
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}
	return nil
}

func applyProductInput(product *domain.Product, input ProductInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Category = strings.TrimSpace(input.Category)
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Price = input.Price
}
