package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"garage-client-api/internal/auth"
	"garage-client-api/internal/billing/catalog"
	catalogapi "garage-client-api/internal/billing/catalog/api"
	catalogdb "garage-client-api/internal/billing/catalog/db"
	"garage-client-api/internal/billing/order"
	orderapi "garage-client-api/internal/billing/order/api"
	orderdb "garage-client-api/internal/billing/order/db"
	orderredis "garage-client-api/internal/billing/order/redis"
	"garage-client-api/internal/billing/paymentmethod"
	paymentmethodapi "garage-client-api/internal/billing/paymentmethod/api"
	paymentmethoddb "garage-client-api/internal/billing/paymentmethod/db"
	"garage-client-api/internal/billing/premium"
	premiumapi "garage-client-api/internal/billing/premium/api"
	premiumdb "garage-client-api/internal/billing/premium/db"
	"garage-client-api/internal/config"
	"garage-client-api/internal/kafka"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres connection: %v", err))
	}
	defer sqldb.Close()
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	// --- Kafka ---
	var publisher kafka.Publisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		topics := []string{
			cfg.Kafka.Topics.OrderCreated,
			cfg.Kafka.Topics.OrderProcessed,
			cfg.Kafka.Topics.OrderFailed,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed, continuing: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		publisher = producer
	}

	// --- Payment methods ---
	clientMethods := paymentmethod.NewService[*models.ClientPaymentMethod](
		paymentmethoddb.NewStore[models.ClientPaymentMethod](bunDB, "client_id"), models.OwnerClient, log)
	garageMethods := paymentmethod.NewService[*models.GaragePaymentMethod](
		paymentmethoddb.NewStore[models.GaragePaymentMethod](bunDB, "garage_id"), models.OwnerGarage, log)

	// --- Premium registrations ---
	clientPremium := premium.NewService[*models.ClientPremiumRegistration](
		premiumdb.NewStore[models.ClientPremiumRegistration](bunDB, "client_id"), models.OwnerClient, log)
	garagePremium := premium.NewService[*models.GaragePremiumRegistration](
		premiumdb.NewStore[models.GaragePremiumRegistration](bunDB, "garage_id"), models.OwnerGarage, log)

	// --- Orders ---
	events := order.NewEventPublisher(publisher, cfg.Kafka.Topics, log)
	clientOrders := order.NewService[*models.ClientPaymentOrder](
		orderdb.NewStore[models.ClientPaymentOrder](bunDB, "client_id"),
		orderdb.NewRefs(bunDB, "client_profiles", "client_payment_methods"),
		events, models.OwnerClient, models.ClientOrderPrefix, log)
	garageOrders := order.NewService[*models.GaragePaymentOrder](
		orderdb.NewStore[models.GaragePaymentOrder](bunDB, "garage_id"),
		orderdb.NewRefs(bunDB, "garage_profiles", "garage_payment_methods"),
		events, models.OwnerGarage, models.GarageOrderPrefix, log)

	var stopSettlement func()
	if cfg.Settlement.UseRedis {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()

		clientScheduler := orderredis.NewScheduler(rdb, "settle:client:", cfg.Settlement.Delay, clientOrders.Settle, log)
		garageScheduler := orderredis.NewScheduler(rdb, "settle:garage:", cfg.Settlement.Delay, garageOrders.Settle, log)
		clientOrders.SetSettler(clientScheduler)
		garageOrders.SetSettler(garageScheduler)
		clientScheduler.Listen()
		garageScheduler.Listen()
		stopSettlement = func() {}
	} else {
		clientQueue := order.NewQueue(clientOrders.Settle, cfg.Settlement.Delay, cfg.Settlement.QueueSize, cfg.Settlement.Workers, log)
		garageQueue := order.NewQueue(garageOrders.Settle, cfg.Settlement.Delay, cfg.Settlement.QueueSize, cfg.Settlement.Workers, log)
		clientOrders.SetSettler(clientQueue)
		garageOrders.SetSettler(garageQueue)
		stopSettlement = func() {
			clientQueue.Stop()
			garageQueue.Stop()
		}
	}

	// --- Catalogs ---
	catalogs := catalog.NewService(&catalogdb.DB{Bun: bunDB}, log)

	// --- HTTP ---
	router := gin.Default()
	api := router.Group("/api/billing")
	var adminGate []gin.HandlerFunc
	if cfg.Auth.Enabled {
		api.Use(auth.GinMiddleware())
		adminGate = append(adminGate, auth.RequireAdmin())
	}

	paymentmethodapi.NewHandler[models.ClientPaymentMethod](clientMethods, log).
		RegisterRoutes(api.Group("/client-payment-methods"))
	paymentmethodapi.NewHandler[models.GaragePaymentMethod](garageMethods, log).
		RegisterRoutes(api.Group("/garage-payment-methods"))

	premiumapi.NewHandler[models.ClientPremiumRegistration](clientPremium, log).
		RegisterRoutes(api.Group("/client-premium-registrations"))
	premiumapi.NewHandler[models.GaragePremiumRegistration](garagePremium, log).
		RegisterRoutes(api.Group("/garage-premium-registrations"))

	orderapi.NewHandler[models.ClientPaymentOrder](clientOrders, log).
		RegisterRoutes(api.Group("/client-payment-orders"), adminGate...)
	orderapi.NewHandler[models.GaragePaymentOrder](garageOrders, log).
		RegisterRoutes(api.Group("/garage-payment-orders"), adminGate...)

	catalogapi.NewHandler(catalogs, log).RegisterRoutes(api)

	server := &http.Server{
		Addr:         cfg.Server.BillingPort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("APP", fmt.Sprintf("Billing service listening on %s", cfg.Server.BillingPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("Server failed: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	stopSettlement()
	log.Info("APP", "Billing service stopped")
}
