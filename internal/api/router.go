package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/stockroom/inventory-service/internal/api/handler"
	"github.com/stockroom/inventory-service/internal/api/middleware"
	"github.com/stockroom/inventory-service/internal/core/ports"
)

const rateLimiterExpiry = 3 * time.Minute

// RouterDeps carries everything the HTTP layer needs from the composition root.
type RouterDeps struct {
	Auth     ports.AuthService
	Products ports.ProductService
	Tokens   ports.TokenVerifier
	Health   map[string]handler.DependencyCheck
	Logger   zerolog.Logger

	// EnforceWriteAuth rejects anonymous product writes when true.
	EnforceWriteAuth bool
	// AuthRateLimit is the per-client request rate on /api/auth; zero disables it.
	AuthRateLimit float64
	AuthRateBurst int

	// Registry overrides the default Prometheus registry for HTTP metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	promMiddleware, promHandler := httpMetrics(deps.Registry)
	e.Use(promMiddleware)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", promHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", middleware.Authenticate(deps.Tokens))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := api.Group("/auth")
	if deps.AuthRateLimit > 0 {
		auth.Use(authRateLimiter(deps.AuthRateLimit, deps.AuthRateBurst))
	}
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)

	// --- Product routes ---
	productHandler := handler.NewProductHandler(deps.Products)
	products := api.Group("/products")

	var writeGuard []echo.MiddlewareFunc
	if deps.EnforceWriteAuth {
		writeGuard = append(writeGuard, middleware.RequireAuth())
	}

	products.GET("", productHandler.List)
	products.GET("/search", productHandler.Search)
	products.GET("/low-stock", productHandler.LowStock)
	products.GET("/category/:category", productHandler.ByCategory)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, writeGuard...)
	products.PUT("/:id", productHandler.Update, writeGuard...)
	products.DELETE("/:id", productHandler.Delete, writeGuard...)

	return e
}

func httpMetrics(reg *prometheus.Registry) (echo.MiddlewareFunc, echo.HandlerFunc) {
	if reg == nil {
		return echoprometheus.NewMiddleware("inventory"), echoprometheus.NewHandler()
	}

	mw := echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "inventory",
		Registerer: reg,
	})
	h := echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: reg,
	})
	return mw, h
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func authRateLimiter(rps float64, burst int) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: rateLimiterExpiry,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
	})
}
