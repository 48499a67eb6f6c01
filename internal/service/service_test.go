package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository/memory"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

type fixture struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	published  []events.Event
	accounts   *AccountService
	products   *ProductService
	orders     *OrderService
	reviews    *ReviewService
	sales      *SalesService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), dispatcher: events.NewInMemoryDispatcher()}
	record := func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	}
	for _, et := range []events.EventType{
		events.EventOrderPlaced, events.EventOrderCancelled, events.EventOrderStatusChanged,
		events.EventReviewCreated, events.EventReviewDeleted, events.EventProductChanged,
	} {
		f.dispatcher.Subscribe(et, record)
	}

	f.accounts = NewAccountService(AccountDependencies{UserRepo: f.store.Users(), Hasher: auth.NewBcryptHasher(bcrypt.MinCost)})
	f.products = NewProductService(ProductDependencies{ProductRepo: f.store.Products(), Dispatcher: f.dispatcher})
	f.orders = NewOrderService(OrderDependencies{OrderRepo: f.store.Orders(), ProductRepo: f.store.Products(), Dispatcher: f.dispatcher})
	f.reviews = NewReviewService(ReviewDependencies{
		ReviewRepo:  f.store.Reviews(),
		OrderRepo:   f.store.Orders(),
		ProductRepo: f.store.Products(),
		Dispatcher:  f.dispatcher,
	})
	f.sales = NewSalesService(f.store.Orders())
	return f
}

func (f *fixture) signup(t *testing.T, email string, role domain.Role) *domain.Identity {
	t.Helper()
	user, err := f.accounts.Signup(context.Background(), SignupInput{Email: email, Password: "password123", Name: email, Role: string(role)})
	require.NoError(t, err)
	return &domain.Identity{UserID: user.ID, Principal: user.Email, Role: user.Role}
}

func (f *fixture) product(t *testing.T, seller *domain.Identity, price int64) *domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), seller, ProductInput{Name: "Lamp", Category: "home", Price: price})
	require.NoError(t, err)
	return p
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.ToDomainError(err).Code
}
