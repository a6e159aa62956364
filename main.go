package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/config"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/database"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/handlers"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, "migrations", logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:             cfg.Database.ConnectionString(),
		MaxConnections:  cfg.Database.MaxConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	brandRepo := repositories.NewBrandRepository(db, logger)
	registryRepo := repositories.NewRegistryRepository(db)

	classifier := services.NewClassifierService(registryRepo, logger)
	ingest := services.NewIngestService(brandRepo, classifier, logger)
	query := services.NewQueryService(brandRepo, cfg.Registry.PageSize, logger)
	enrichment := services.NewEnrichmentService(brandRepo, logger)
	consolidation := services.NewConsolidationService(brandRepo, logger)
	admin := services.NewAdminService(brandRepo, logger)
	feed := services.NewFeedService(registryRepo, logger)

	priority, err := services.NewPriorityService(
		brandRepo,
		cfg.Registry.CompetitorNames,
		time.Duration(cfg.Registry.RecencyWindowDays)*24*time.Hour,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create priority service", zap.Error(err))
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewRegistryHandler(ingest, query, priority, consolidation, enrichment, admin, feed, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting brand registry engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
