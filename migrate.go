package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"garage-client-api/internal/config"
	"garage-client-api/internal/database/migrations"
	"garage-client-api/internal/logger"
	"garage-client-api/internal/models"
)

// runMigrateCommand handles the "migrate" subcommand. Supported commands:
//
//	up            apply all pending migrations
//	down          roll back one migration
//	to <version>  migrate to a specific version
//	seed          apply all migrations including seed data
//	reset         drop and recreate all tables from the model definitions
func runMigrateCommand(cfg *config.Config, log *logger.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing migrate command, expected up, down, to, seed or reset")
	}

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open Postgres connection: %w", err)
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	opts := migrations.DefaultOptions()

	switch args[0] {
	case "up":
		runner := migrations.NewRunner(bunDB, opts)
		defer runner.Close()
		log.Info("DATABASE", "Applying pending migrations")
		return runner.MigrateUp()
	case "down":
		runner := migrations.NewRunner(bunDB, opts)
		defer runner.Close()
		log.Info("DATABASE", "Rolling back one migration")
		return runner.MigrateDown()
	case "to":
		if len(args) < 2 {
			return fmt.Errorf("migrate to requires a version argument")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		runner := migrations.NewRunner(bunDB, opts)
		defer runner.Close()
		log.Info("DATABASE", fmt.Sprintf("Migrating to version %d", version))
		return runner.MigrateTo(uint(version))
	case "seed":
		opts.SeedData = true
		runner := migrations.NewRunner(bunDB, opts)
		defer runner.Close()
		log.Info("DATABASE", "Applying all migrations including seed data")
		return runner.RunMigrations()
	case "reset":
		log.Info("DATABASE", "Dropping and recreating all tables")
		if err := dropTables(bunDB); err != nil {
			return err
		}
		return createTables(bunDB)
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}
}

// migrationModels lists every table in dependency order, parents first.
var migrationModels = []interface{}{
	(*models.Country)(nil),
	(*models.Specialization)(nil),
	(*models.Currency)(nil),
	(*models.PaymentType)(nil),
	(*models.PremiumOffer)(nil),
	(*models.ClientProfile)(nil),
	(*models.GarageProfile)(nil),
	(*models.ClientPaymentMethod)(nil),
	(*models.GaragePaymentMethod)(nil),
	(*models.ClientPremiumRegistration)(nil),
	(*models.GaragePremiumRegistration)(nil),
	(*models.ClientPaymentOrder)(nil),
	(*models.GaragePaymentOrder)(nil),
	(*models.Vehicle)(nil),
	(*models.VehicleAppointment)(nil),
	(*models.ClientNotification)(nil),
	(*models.ClientReminder)(nil),
}

func dropTables(db *bun.DB) error {
	ctx := context.Background()
	// children first
	for i := len(migrationModels) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(migrationModels[i]).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", migrationModels[i], err)
		}
	}
	return nil
}

func createTables(db *bun.DB) error {
	ctx := context.Background()
	for _, model := range migrationModels {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().WithForeignKeys().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}
