// Package memory keeps every repository in process memory. It backs tests and
// local runs without POSTGRES_DSN.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// Store holds all tables behind one lock so joins and rating updates stay consistent.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	nextID   int64
	users    map[int64]domain.User
	emails   map[string]int64
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	reviews  map[int64]domain.Review
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[int64]domain.User),
		emails:   make(map[string]int64),
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
		reviews:  make(map[int64]domain.Review),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Users returns the account repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Products returns the catalogue repository view.
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }

// Orders returns the order repository view.
func (s *Store) Orders() repository.OrderRepository { return orderRepo{s} }

// Reviews returns the review repository view.
func (s *Store) Reviews() repository.ReviewRepository { return reviewRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.s.emails[key]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	now := r.s.now()
	user.ID = r.s.id()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	r.s.emails[key] = user.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := r.s.users[id]
	return &user, nil
}

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	product.ID = r.s.id()
	product.AverageRating, product.RatingCount = 0, 0
	product.CreatedAt, product.UpdatedAt = now, now
	r.s.products[product.ID] = *product
	return nil
}

func (r productRepo) Update(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[product.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	current.Name = product.Name
	current.Description = product.Description
	current.Category = product.Category
	current.ImageURL = product.ImageURL
	current.Price = product.Price
	current.UpdatedAt = r.s.now()
	r.s.products[product.ID] = current
	*product = current
	return nil
}

func (r productRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	product, ok := r.s.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &product, nil
}

func (r productRepo) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	products := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.SellerID != nil && p.SellerID != *filter.SellerID {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product, ok := r.s.products[order.ProductID]
	if !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "orders_product_id_fkey"}
	}
	now := r.s.now()
	order.ID = r.s.id()
	order.OrderDate, order.UpdatedAt = now, now
	order.ProductName = product.Name
	r.s.orders[order.ID] = *order
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	order.ProductName = r.s.products[order.ProductID].Name
	return &order, nil
}

func (r orderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	orders := make([]domain.Order, 0)
	for _, o := range r.s.orders {
		if o.UserID != userID {
			continue
		}
		o.ProductName = r.s.products[o.ProductID].Name
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].OrderDate.After(orders[j].OrderDate)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (r orderRepo) UpdateStatus(_ context.Context, id int64, from, to domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if order.Status != from {
		return repository.ErrStatusConflict
	}
	order.Status = to
	order.UpdatedAt = r.s.now()
	r.s.orders[id] = order
	return nil
}

func (r orderRepo) HasPurchased(_ context.Context, userID, productID int64, statuses []domain.OrderStatus) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.orders {
		if o.UserID != userID || o.ProductID != productID {
			continue
		}
		for _, st := range statuses {
			if o.Status == st {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r orderRepo) SalesStatsBySeller(_ context.Context, sellerID int64) ([]domain.SalesStat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byProduct := make(map[int64]*domain.SalesStat)
	for _, p := range r.s.products {
		if p.SellerID != sellerID {
			continue
		}
		byProduct[p.ID] = &domain.SalesStat{ProductID: p.ID, ProductName: p.Name, AverageRating: p.AverageRating}
	}
	for _, o := range r.s.orders {
		stat, ok := byProduct[o.ProductID]
		if !ok || o.Status == domain.OrderStatusCancelled {
			continue
		}
		stat.TotalQuantity += int64(o.Quantity)
		stat.TotalSales += o.TotalPrice
	}
	stats := make([]domain.SalesStat, 0, len(byProduct))
	for _, stat := range byProduct {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ProductID < stats[j].ProductID })
	return stats, nil
}

type reviewRepo struct{ s *Store }

func (r reviewRepo) CreateWithRating(_ context.Context, review *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[review.ProductID]; !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "reviews_product_id_fkey"}
	}
	review.ID = r.s.id()
	review.CreatedAt = r.s.now()
	review.UserName = r.s.users[review.UserID].Name
	r.s.reviews[review.ID] = *review
	r.refreshRating(review.ProductID)
	return nil
}

func (r reviewRepo) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	review, ok := r.s.reviews[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	review.UserName = r.s.users[review.UserID].Name
	return &review, nil
}

func (r reviewRepo) ListByProduct(_ context.Context, productID int64) ([]domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reviews := make([]domain.Review, 0)
	for _, rv := range r.s.reviews {
		if rv.ProductID != productID {
			continue
		}
		rv.UserName = r.s.users[rv.UserID].Name
		reviews = append(reviews, rv)
	}
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
		return reviews[i].ID > reviews[j].ID
	})
	return reviews, nil
}

func (r reviewRepo) DeleteWithRating(_ context.Context, review *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.reviews[review.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.reviews, review.ID)
	r.refreshRating(current.ProductID)
	return nil
}

// refreshRating must be called with the write lock held.
func (r reviewRepo) refreshRating(productID int64) {
	product, ok := r.s.products[productID]
	if !ok {
		return
	}
	var sum, count int64
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID {
			sum += int64(rv.Rating)
			count++
		}
	}
	product.RatingCount = count
	product.AverageRating = 0
	if count > 0 {
		product.AverageRating = float64(sum) / float64(count)
	}
	product.UpdatedAt = r.s.now()
	r.s.products[productID] = product
}
