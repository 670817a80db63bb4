package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
)

// Service is the order lifecycle as seen by the HTTP layer.
type Service interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID int) (domain.Product, error)

	CreateOrder(ctx context.Context, req checkout.CreateOrderRequest) (checkout.CreateOrderResult, error)
	CreateProductOrder(ctx context.Context, productID int, customer domain.Customer) (checkout.CreateOrderResult, error)
	CaptureOrder(ctx context.Context, providerOrderID string) (checkout.CaptureOrderResult, error)

	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) (checkout.ListOrdersResult, error)
}

type RouterConfig struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(svc Service, cfg RouterConfig, logger *slog.Logger) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("service is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		r.Use(newIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).middleware)
	}

	r.Get("/health", Health())

	r.Get("/products", ListProducts(svc, logger))
	r.Get("/products/{id}", GetProduct(svc, logger))

	r.Post("/pay/paypal", PayProduct(svc, logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/paypal/create-order", CreateOrder(svc, logger))
		r.Post("/paypal/capture-order", CaptureOrder(svc, logger))

		r.Get("/orders", ListOrders(svc, logger))
		r.Get("/orders/{id}", GetOrder(svc, logger))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return r, nil
}
