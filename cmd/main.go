package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ralet11/cocina-orders/internal/application"
	"github.com/Ralet11/cocina-orders/internal/backend"
	"github.com/Ralet11/cocina-orders/internal/config"
	"github.com/Ralet11/cocina-orders/internal/events"
	"github.com/Ralet11/cocina-orders/internal/logger"
	"github.com/Ralet11/cocina-orders/internal/migrate"
	"github.com/Ralet11/cocina-orders/internal/payment"
	"github.com/Ralet11/cocina-orders/internal/presentation"
	"github.com/Ralet11/cocina-orders/internal/repository"
)

func main() {
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("config load failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.DB_STRING)
	if err != nil {
		logger.Warn("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Warn("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	if err := migrate.Up(cfg.DB_STRING); err != nil {
		logger.Warn("migrations failed", "err", err)
		os.Exit(1)
	}

	// Wiring
	repo := repository.NewOrderRepository(pool)
	orders := application.NewOrderStore(repo)
	cart := application.NewCartStore()
	addresses := application.NewAddressBook()
	sheet := payment.NewSheetBridge()

	payments := backend.NewPaymentClient(cfg.PAYMENTS_URL)
	orderBackend := backend.NewOrdersClient(cfg.ORDERS_URL)
	checkout := application.NewCoordinator(cart, orders, addresses, payments, sheet, orderBackend)

	// Restore recent orders into the record store (last 1000)
	if err := orders.RestoreCache(ctx, 1000); err != nil {
		logger.Warn("restore cache failed", "err", err)
	}

	// Event channel (order status pushes)
	_, _ = events.StartConsumer(ctx, orders, events.ConsumerConfig{
		Brokers: cfg.KAFKA_BROKERS,
		Topic:   cfg.KAFKA_TOPIC,
		GroupID: cfg.KAFKA_GROUP_ID,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// API
	h := presentation.NewHandler(cart, orders, addresses, checkout, sheet)
	h.Register(r, cfg.JWT_SECRET)

	addr := ":" + cfg.HTTP_PORT
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting http", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("http server crashed", "err", err)
		os.Exit(1)
	}
}
