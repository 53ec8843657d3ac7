package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/storefront/customer-api/docs"
	"github.com/storefront/customer-api/internal/api/handler"
	"github.com/storefront/customer-api/internal/api/middleware"
	"github.com/storefront/customer-api/internal/core/domain"
	"github.com/storefront/customer-api/internal/core/ports"
	"github.com/storefront/customer-api/internal/pkg/metrics"
)

// Dependencies are the services and checks the HTTP layer is built from.
type Dependencies struct {
	Auth   ports.AuthService
	Orders ports.OrderService
	Checks []handler.DependencyCheck
	Logger zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics and /metrics. When nil a
	// private registry is used.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	if deps.Registerer == nil || deps.Gatherer == nil {
		reg := prometheus.NewRegistry()
		deps.Registerer, deps.Gatherer = reg, reg
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metrics.Namespace,
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	orderHandler := handler.NewOrderHandler(deps.Orders, deps.Auth)
	healthHandler := handler.NewHealthHandler(deps.Checks...)

	requireAuth := middleware.Auth(deps.Auth)
	optionalAuth := middleware.OptionalAuth(deps.Auth)

	g := e.Group("/api")

	// --- Auth routes ---
	g.POST("/register", authHandler.Register)
	g.POST("/auth", authHandler.Login)
	g.GET("/auth/me", authHandler.Me, requireAuth)

	// --- Order routes ---
	g.POST("/orders", orderHandler.Create, optionalAuth)
	g.GET("/orders/history", orderHandler.History, requireAuth)
	g.GET("/orders/:id", orderHandler.Get)
	g.GET("/users/:id/orders", orderHandler.UserHistory, requireAuth, middleware.RBAC(domain.RoleAdmin))

	// --- Health checks (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
