package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore-be/internal/catalog"
	"bookstore-be/internal/config"
	"bookstore-be/internal/db"
	"bookstore-be/internal/events"
	"bookstore-be/internal/handler"
	"bookstore-be/internal/inventory"
	"bookstore-be/internal/logger"
	"bookstore-be/internal/metrics"
	"bookstore-be/internal/middleware"
	"bookstore-be/internal/order"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownSignal  = func() <-chan os.Signal {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		return ch
	}
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

// app holds everything the HTTP server needs plus what must be closed on exit.
type app struct {
	handler   http.Handler
	publisher events.Publisher
	limiter   *middleware.RateLimiter
}

func (a *app) Close() {
	a.limiter.Stop()
	if err := a.publisher.Close(); err != nil {
		logger.L().Warn("failed to close event publisher", zap.Error(err))
	}
}

func newServer(cfg *config.Config, conn *sql.DB) *app {
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.OrderEventsTopic))
		logger.L().Info("publishing order events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.OrderEventsTopic),
		)
	}

	orderMetrics := &metrics.OrderMetrics{}
	orderSvc := order.NewService(
		db.NewTransactor(conn),
		order.NewRepository(),
		catalog.NewRepository(),
		inventory.NewLedger(),
		publisher,
		orderMetrics,
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	return &app{
		handler: handler.NewRouter(handler.RouterDeps{
			OrderSvc:    orderSvc,
			Metrics:     orderMetrics,
			DB:          conn,
			JWTSecret:   cfg.JWTSecret,
			RateLimiter: limiter,
		}),
		publisher: publisher,
		limiter:   limiter,
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.L().Warn("JWT_SECRET is not set; admin routes will reject every request")
	}

	// Money is rendered as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true

	conn := initDBFunc(cfg)
	defer conn.Close()

	a := newServer(cfg, conn)
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("order service listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-shutdownSignal():
		logger.L().Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
