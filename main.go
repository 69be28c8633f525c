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
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"garage-client-api/internal/appointments"
	appointmentsapi "garage-client-api/internal/appointments/api"
	appointmentsdb "garage-client-api/internal/appointments/db"
	"garage-client-api/internal/appointments/qr"
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
	"garage-client-api/internal/clients"
	clientsapi "garage-client-api/internal/clients/api"
	clientsdb "garage-client-api/internal/clients/db"
	"garage-client-api/internal/config"
	"garage-client-api/internal/database/migrations"
	"garage-client-api/internal/garages"
	garagesapi "garage-client-api/internal/garages/api"
	garagesdb "garage-client-api/internal/garages/db"
	"garage-client-api/internal/kafka"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
	"garage-client-api/internal/notifications"
	notificationsapi "garage-client-api/internal/notifications/api"
	notificationsdb "garage-client-api/internal/notifications/db"
	"garage-client-api/internal/notifications/sse"
	"garage-client-api/internal/registry"
	registryapi "garage-client-api/internal/registry/api"
	registrydb "garage-client-api/internal/registry/db"
	"garage-client-api/internal/vehicles"
	vehiclesapi "garage-client-api/internal/vehicles/api"
	vehiclesdb "garage-client-api/internal/vehicles/db"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	// "migrate" subcommand runs schema commands and exits instead of serving.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrateCommand(cfg, log, os.Args[2:]); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration command failed: %v", err))
		}
		return
	}

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

	migrateOpts := migrations.DefaultOptions()
	if migrateOpts.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrateOpts)
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
	}

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

	// --- Billing services ---
	clientMethods := paymentmethod.NewService[*models.ClientPaymentMethod](
		paymentmethoddb.NewStore[models.ClientPaymentMethod](bunDB, "client_id"), models.OwnerClient, log)
	garageMethods := paymentmethod.NewService[*models.GaragePaymentMethod](
		paymentmethoddb.NewStore[models.GaragePaymentMethod](bunDB, "garage_id"), models.OwnerGarage, log)

	clientPremium := premium.NewService[*models.ClientPremiumRegistration](
		premiumdb.NewStore[models.ClientPremiumRegistration](bunDB, "client_id"), models.OwnerClient, log)
	garagePremium := premium.NewService[*models.GaragePremiumRegistration](
		premiumdb.NewStore[models.GaragePremiumRegistration](bunDB, "garage_id"), models.OwnerGarage, log)

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

	catalogs := catalog.NewService(&catalogdb.DB{Bun: bunDB}, log)

	// --- Registry services ---
	clientService := clients.NewService(&clientsdb.DB{Bun: bunDB}, log)
	garageService := garages.NewService(&garagesdb.DB{Bun: bunDB}, garagePremium, log)
	registryService := registry.NewService(&registrydb.DB{Bun: bunDB}, log)
	vehicleService := vehicles.NewService(&vehiclesdb.DB{Bun: bunDB}, log)
	appointmentService := appointments.NewService(&appointmentsdb.DB{Bun: bunDB},
		qr.NewQRGenerator(cfg.Auth.QRSecret), log)

	emitter := sse.NewNotificationEmitter()
	notificationService := notifications.NewService(&notificationsdb.DB{Bun: bunDB}, emitter, log)

	// --- Billing HTTP (gin) ---
	billingRouter := gin.Default()
	billingAPI := billingRouter.Group("/api/billing")
	var adminGate []gin.HandlerFunc
	if cfg.Auth.Enabled {
		billingAPI.Use(auth.GinMiddleware())
		adminGate = append(adminGate, auth.RequireAdmin())
	}

	paymentmethodapi.NewHandler[models.ClientPaymentMethod](clientMethods, log).
		RegisterRoutes(billingAPI.Group("/client-payment-methods"))
	paymentmethodapi.NewHandler[models.GaragePaymentMethod](garageMethods, log).
		RegisterRoutes(billingAPI.Group("/garage-payment-methods"))
	premiumapi.NewHandler[models.ClientPremiumRegistration](clientPremium, log).
		RegisterRoutes(billingAPI.Group("/client-premium-registrations"))
	premiumapi.NewHandler[models.GaragePremiumRegistration](garagePremium, log).
		RegisterRoutes(billingAPI.Group("/garage-premium-registrations"))
	orderapi.NewHandler[models.ClientPaymentOrder](clientOrders, log).
		RegisterRoutes(billingAPI.Group("/client-payment-orders"), adminGate...)
	orderapi.NewHandler[models.GaragePaymentOrder](garageOrders, log).
		RegisterRoutes(billingAPI.Group("/garage-payment-orders"), adminGate...)
	catalogapi.NewHandler(catalogs, log).RegisterRoutes(billingAPI)

	// --- Registry HTTP (chi) ---
	registryRouter := chi.NewRouter()
	registryRouter.Use(chimiddleware.RequestID)
	registryRouter.Use(chimiddleware.Logger)
	registryRouter.Use(chimiddleware.Recoverer)

	if cfg.Auth.Enabled {
		var tokenCache *auth.TokenCache
		if cfg.Redis.Enabled {
			cacheClient, err := auth.InitializeTokenCache(cfg.Redis.Addr, log)
			if err != nil {
				log.Warn("AUTH", fmt.Sprintf("Token cache unavailable, continuing without it: %v", err))
			} else {
				defer cacheClient.Close()
				tokenCache = auth.NewTokenCache(cacheClient, 5*time.Minute)
			}
		}
		registryRouter.Use(auth.Middleware(cfg.Auth.OIDCIssuer, tokenCache))
	}

	registryHandler := registryapi.NewHandler(registryService)
	notificationHandler := notificationsapi.NewHandler(notificationService, emitter)

	registryRouter.Route("/api/registry", func(r chi.Router) {
		r.Route("/clients", clientsapi.NewHandler(clientService).RegisterRoutes)
		r.Route("/garages", garagesapi.NewHandler(garageService).RegisterRoutes)
		r.Route("/countries", registryHandler.RegisterCountryRoutes)
		r.Route("/specializations", registryHandler.RegisterSpecializationRoutes)
		r.Route("/vehicles", vehiclesapi.NewHandler(vehicleService).RegisterRoutes)
		r.Route("/appointments", appointmentsapi.NewHandler(appointmentService).RegisterRoutes)
		r.Route("/notifications", notificationHandler.RegisterRoutes)
		r.Route("/reminders", notificationHandler.RegisterReminderRoutes)
	})

	billingServer := &http.Server{
		Addr:         cfg.Server.BillingPort,
		Handler:      billingRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	registryServer := &http.Server{
		Addr:        cfg.Server.RegistryPort,
		Handler:     registryRouter,
		ReadTimeout: cfg.Server.ReadTimeout,
		// no write deadline, notification streams stay open indefinitely
		WriteTimeout: 0,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("APP", fmt.Sprintf("Billing API listening on %s", cfg.Server.BillingPort))
		if err := billingServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("Billing server failed: %v", err))
		}
	}()
	go func() {
		log.Info("APP", fmt.Sprintf("Registry API listening on %s", cfg.Server.RegistryPort))
		if err := registryServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("Registry server failed: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := billingServer.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Billing server shutdown failed: %v", err))
	}
	if err := registryServer.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Registry server shutdown failed: %v", err))
	}
	stopSettlement()
	log.Info("APP", "Shutdown complete")
}
