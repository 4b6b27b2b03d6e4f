package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinehub/restaurant-api/internal/application"
	"github.com/dinehub/restaurant-api/internal/auth"
	"github.com/dinehub/restaurant-api/internal/cache"
	"github.com/dinehub/restaurant-api/internal/config"
	appkafka "github.com/dinehub/restaurant-api/internal/kafka"
	"github.com/dinehub/restaurant-api/internal/logger"
	"github.com/dinehub/restaurant-api/internal/migrate"
	"github.com/dinehub/restaurant-api/internal/payments"
	"github.com/dinehub/restaurant-api/internal/presentation"
	"github.com/dinehub/restaurant-api/internal/repository"
)

func main() {
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	if err := migrate.Up(cfg.DB_STRING); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DB_STRING)
	if err != nil {
		logger.Error("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Error("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	// Wiring
	orderRepo := repository.NewOrderRepository(pool)
	counterRepo := repository.NewCounterRepository(pool)
	foodRepo := repository.NewFoodRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	redisCache := cache.NewRedisCache(cfg.REDIS_ADDR, "restaurant-api")

	var gateway payments.Gateway
	if cfg.PAYMENT_API_URL != "" {
		gateway = payments.NewHTTPGateway(cfg.PAYMENT_API_URL, cfg.PAYMENT_API_KEY)
	} else {
		logger.Warn("no payment gateway configured, using offline intents")
		gateway = payments.NewOfflineGateway(counterRepo)
	}

	prod := appkafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
	defer prod.Close()

	catalogSvc := application.NewCatalogService(foodRepo, redisCache)
	ordersSvc := application.NewOrdersService(orderRepo, counterRepo, catalogSvc, gateway, prod)
	reservationsSvc := application.NewReservationsService(reservationRepo)

	// Notification delivery worker (same process, consumer group)
	_, _ = appkafka.StartConsumer(
		context.Background(),
		appkafka.LogDeliverer{},
		appkafka.ConsumerConfig{
			Brokers: cfg.KAFKA_BROKERS,
			Topic:   cfg.KAFKA_TOPIC,
			GroupID: cfg.KAFKA_GROUP_ID,
		},
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(auth.Middleware(cfg.JWT_SECRET))

	presentation.NewOrdersHandler(ordersSvc).Register(r)
	presentation.NewPaymentsHandler(ordersSvc, cfg.PAYMENT_WEBHOOK_SECRET).Register(r)
	presentation.NewCatalogHandler(catalogSvc).Register(r)
	presentation.NewReservationsHandler(reservationsSvc).Register(r)

	addr := ":" + cfg.HTTP_PORT
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("http server crashed", "err", err)
		os.Exit(1)
	}
}
