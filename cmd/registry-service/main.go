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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"garage-client-api/internal/appointments"
	appointmentsapi "garage-client-api/internal/appointments/api"
	appointmentsdb "garage-client-api/internal/appointments/db"
	"garage-client-api/internal/appointments/qr"
	"garage-client-api/internal/auth"
	"garage-client-api/internal/billing/premium"
	premiumdb "garage-client-api/internal/billing/premium/db"
	"garage-client-api/internal/clients"
	clientsapi "garage-client-api/internal/clients/api"
	clientsdb "garage-client-api/internal/clients/db"
	"garage-client-api/internal/config"
	"garage-client-api/internal/database/migrations"
	"garage-client-api/internal/garages"
	garagesapi "garage-client-api/internal/garages/api"
	garagesdb "garage-client-api/internal/garages/db"
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

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN)))
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

	// Garage premium checks read the billing registrations directly.
	garagePremium := premium.NewService[*models.GaragePremiumRegistration](
		premiumdb.NewStore[models.GaragePremiumRegistration](bunDB, "garage_id"), models.OwnerGarage, log)

	clientService := clients.NewService(&clientsdb.DB{Bun: bunDB}, log)
	garageService := garages.NewService(&garagesdb.DB{Bun: bunDB}, garagePremium, log)
	registryService := registry.NewService(&registrydb.DB{Bun: bunDB}, log)
	vehicleService := vehicles.NewService(&vehiclesdb.DB{Bun: bunDB}, log)
	appointmentService := appointments.NewService(&appointmentsdb.DB{Bun: bunDB},
		qr.NewQRGenerator(cfg.Auth.QRSecret), log)

	emitter := sse.NewNotificationEmitter()
	notificationService := notifications.NewService(&notificationsdb.DB{Bun: bunDB}, emitter, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

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
		router.Use(auth.Middleware(cfg.Auth.OIDCIssuer, tokenCache))
	}

	registryHandler := registryapi.NewHandler(registryService)
	notificationHandler := notificationsapi.NewHandler(notificationService, emitter)

	router.Route("/api/registry", func(r chi.Router) {
		r.Route("/clients", clientsapi.NewHandler(clientService).RegisterRoutes)
		r.Route("/garages", garagesapi.NewHandler(garageService).RegisterRoutes)
		r.Route("/countries", registryHandler.RegisterCountryRoutes)
		r.Route("/specializations", registryHandler.RegisterSpecializationRoutes)
		r.Route("/vehicles", vehiclesapi.NewHandler(vehicleService).RegisterRoutes)
		r.Route("/appointments", appointmentsapi.NewHandler(appointmentService).RegisterRoutes)
		r.Route("/notifications", notificationHandler.RegisterRoutes)
		r.Route("/reminders", notificationHandler.RegisterReminderRoutes)
	})

	server := &http.Server{
		Addr:        cfg.Server.RegistryPort,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// no write deadline, notification streams stay open indefinitely
		WriteTimeout: 0,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("APP", fmt.Sprintf("Registry service listening on %s", cfg.Server.RegistryPort))
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
	log.Info("APP", "Registry service stopped")
}
