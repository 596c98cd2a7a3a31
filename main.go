package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/auth"
	"github.com/lakegate-inc/lakegate-engine/pkg/config"
	"github.com/lakegate-inc/lakegate-engine/pkg/database"
	"github.com/lakegate-inc/lakegate-engine/pkg/handlers"
	"github.com/lakegate-inc/lakegate-engine/pkg/lake"
	"github.com/lakegate-inc/lakegate-engine/pkg/middleware"
	"github.com/lakegate-inc/lakegate-engine/pkg/repositories"
	"github.com/lakegate-inc/lakegate-engine/pkg/retry"
	"github.com/lakegate-inc/lakegate-engine/pkg/search"
	"github.com/lakegate-inc/lakegate-engine/pkg/services"
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
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Host),
		zap.String("search_address", cfg.Search.Address),
		zap.String("default_version", cfg.Lake.DefaultVersion))

	ctx := context.Background()

	db, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migrateDatabase(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repositories.
	versionRepo := repositories.NewVersionRepository(db)
	rightsRepo := repositories.NewAccessRightRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Lake and search backends.
	reader := lake.NewReader()
	indexer, err := search.NewClient(cfg.Search.Address, cfg.Search.Index)
	if err != nil {
		logger.Fatal("Failed to create search client", zap.Error(err))
	}

	// Services.
	searchService := services.NewSearchService(indexer, cfg.Search.MaxRetries, cfg.Search.RetryDelay(), logger)
	catalogService := services.NewCatalogService(versionRepo, reader, logger)
	accessService := services.NewAccessService(rightsRepo, auditRepo, logger)
	materializerService := services.NewMaterializerService(transactionRepo, reader, searchService, logger)
	datasetService := services.NewDatasetService(accessService, catalogService, rightsRepo, reader, cfg.Lake.DefaultVersion, cfg.Lake.PageSize, logger)
	statsService := services.NewStatsService(transactionRepo, materializerService, catalogService, cfg.Lake.CanonicalDataset, cfg.Lake.DefaultVersion, logger)
	transactionService := services.NewTransactionService(transactionRepo, materializerService, catalogService, cfg.Lake.CanonicalDataset, cfg.Lake.DefaultVersion, logger)
	reindexService := services.NewReindexService(catalogService, reader, searchService, logger)

	// The index connects in the background so startup is never blocked on
	// the search backend.
	go searchService.Start(ctx)

	// Auth and middleware.
	authService := auth.NewAuthService(cfg.Auth.SigningKey, cfg.Auth.EnableVerification, logger)
	authMW := auth.NewMiddleware(authService, logger)
	auditMW := middleware.RequestAudit(auditRepo, logger)

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return authMW.RequireAuth(auditMW(next))
	}
	staff := func(next http.HandlerFunc) http.HandlerFunc {
		return authMW.RequireStaff(auditMW(next))
	}

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, searchService, logger).RegisterRoutes(mux)
	handlers.NewAccessHandler(accessService, logger).RegisterRoutes(mux, authed)
	handlers.NewDataLakeHandler(datasetService, catalogService, accessService, logger).RegisterRoutes(mux, authed, staff)
	handlers.NewStatsHandler(statsService, accessService, cfg.Lake.CanonicalDataset, time.Now, logger).RegisterRoutes(mux, authed)
	handlers.NewSearchHandler(searchService, logger).RegisterRoutes(mux, authed)
	handlers.NewTransactionsHandler(transactionService, accessService, cfg.Lake.CanonicalDataset, cfg.Lake.PageSize, logger).RegisterRoutes(mux, authed)
	handlers.NewAdminHandler(reindexService, logger).RegisterRoutes(mux, staff)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting lakegate-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// connectDatabase opens the pgx pool, retrying briefly so a database that
// comes up alongside the service does not fail the boot.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	dbCfg := &database.Config{URL: cfg.Database.ConnectionString()}
	return retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		db, err := database.NewConnection(ctx, dbCfg)
		if err != nil {
			logger.Warn("Database not reachable yet", zap.Error(err))
			return nil, err
		}
		return db, nil
	})
}

// migrateDatabase applies schema migrations over a short-lived database/sql
// connection, which the migration driver requires.
func migrateDatabase(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return database.RunMigrations(sqlDB, logger)
}
