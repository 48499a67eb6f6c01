// Package app assembles the HTTP application from its collaborators.
package app

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	httptransport "github.com/spec-kit/commerce-service/internal/api/http"
	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/cache"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	"github.com/spec-kit/commerce-service/internal/service"
	"github.com/spec-kit/commerce-service/internal/worker"
)

// Repositories are the storage backends, Postgres or in-memory.
type Repositories struct {
	Users    repository.UserRepository
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Reviews  repository.ReviewRepository
}

// Dependencies bundles everything New needs beyond configuration.
type Dependencies struct {
	Logger       *zap.Logger
	Repos        Repositories
	ProductCache *cache.ProductCache
	Health       map[string]handlers.Pinger
}

// New wires services, middleware and routes into a fiber app.
func New(cfg *config.Config, deps Dependencies) (*fiber.App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens, err := auth.NewTokenCodec(cfg.Auth)
	if err != nil {
		return nil, err
	}

	productCache := deps.ProductCache
	if productCache == nil {
		productCache = cache.NewProductCache(nil, 0, logger)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartWorkers(dispatcher,
		service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification),
		worker.NewCacheInvalidator(productCache, logger))

	accounts := service.NewAccountService(service.AccountDependencies{
		UserRepo: deps.Repos.Users,
		Hasher:   auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Logger:   logger,
	})
	products := service.NewProductService(service.ProductDependencies{
		ProductRepo: deps.Repos.Products,
		Cache:       productCache,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	orders := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   deps.Repos.Orders,
		ProductRepo: deps.Repos.Products,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	reviews := service.NewReviewService(service.ReviewDependencies{
		ReviewRepo:  deps.Repos.Reviews,
		OrderRepo:   deps.Repos.Orders,
		ProductRepo: deps.Repos.Products,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	sales := service.NewSalesService(deps.Repos.Orders)

	validator := dto.NewValidator()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		CaseSensitive:         true,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		RequestTimeout: cfg.App.RequestTimeout(),
		CORS:           cfg.CORS,
		Authenticator:  auth.NewAuthenticator(tokens, deps.Repos.Users, logger.Named("auth")),
		Policy:         auth.DefaultPolicy(),
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Health),
		Auth:     handlers.NewAuthHandler(accounts, tokens, validator),
		Products: handlers.NewProductsHandler(products),
		Seller:   handlers.NewSellerHandler(products, orders, validator),
		Orders:   handlers.NewOrdersHandler(orders, validator),
		Reviews:  handlers.NewReviewsHandler(reviews, validator),
		Sales:    handlers.NewSalesHandler(sales),
	})
	return app, nil
}
