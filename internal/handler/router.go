package handler

import (
	"net/http"

	"bookstore-be/internal/logger"
	"bookstore-be/internal/metrics"
	"bookstore-be/internal/middleware"
	"bookstore-be/internal/order"
)

type RouterDeps struct {
	OrderSvc    order.Service
	Metrics     *metrics.OrderMetrics
	DB          Pinger
	JWTSecret   string
	RateLimiter *middleware.RateLimiter
}

// NewRouter wires the order routes behind request id, access log and rate
// limiting, in that order.
func NewRouter(deps RouterDeps) http.Handler {
	orders := NewOrderHandler(deps.OrderSvc)
	adminOnly := middleware.AdminOnly(deps.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", orders.CreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", orders.GetOrder)
	mux.Handle("GET /api/orders", adminOnly(http.HandlerFunc(orders.ListOrders)))
	mux.Handle("PUT /api/orders/{id}", adminOnly(http.HandlerFunc(orders.UpdateOrderStatus)))
	mux.HandleFunc("GET /internal/metrics", Metrics(deps.Metrics))
	mux.HandleFunc("GET /healthz", Health(deps.DB))

	var h http.Handler = mux
	if deps.RateLimiter != nil {
		h = deps.RateLimiter.Middleware(h)
	}
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)
	return h
}
