package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Products *handlers.ProductsHandler
	Seller   *handlers.SellerHandler
	Orders   *handlers.OrdersHandler
	Reviews  *handlers.ReviewsHandler
	Sales    *handlers.SalesHandler
}

// RegisterRoutes wires HTTP routes. Access control lives in the policy
// middleware, not on individual routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.Auth.Me)

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:id", cfg.Products.Get)

	seller := api.Group("/seller")
	seller.Get("/products", cfg.Seller.ListProducts)
	seller.Post("/products", cfg.Seller.CreateProduct)
	seller.Put("/products/:id", cfg.Seller.UpdateProduct)
	seller.Patch("/orders/:id/status", cfg.Seller.UpdateOrderStatus)

	orders := api.Group("/orders")
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/my", cfg.Orders.ListMine)
	orders.Patch("/:id/cancel", cfg.Orders.Cancel)
	orders.Delete("/:id", cfg.Orders.Cancel)

	reviews := api.Group("/reviews")
	reviews.Post("/", cfg.Reviews.Create)
	reviews.Get("/product/:productId", cfg.Reviews.ListByProduct)
	reviews.Delete("/:id", cfg.Reviews.Delete)

	api.Get("/sales/stats", cfg.Sales.Stats)
}
