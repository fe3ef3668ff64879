package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shelfmark/shelfmark-web/internal/config"
	"github.com/shelfmark/shelfmark-web/internal/constant"
	"github.com/shelfmark/shelfmark-web/internal/handlers"
	"github.com/shelfmark/shelfmark-web/internal/logger"
	"github.com/shelfmark/shelfmark-web/internal/metrics"
	"github.com/shelfmark/shelfmark-web/internal/middleware"
	"github.com/shelfmark/shelfmark-web/internal/tier"
	"github.com/shelfmark/shelfmark-web/internal/token"
)

func main() {
	cfg := config.Load()
	flag.Parse()

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Error("JWT_SECRET is required to validate session tokens")
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode) // Explicitly set release mode
	if cfg.DebugMode {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	if cfg.DebugMode {
		router.Use(cors.New(cors.Config{
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type", "Accept", "HX-Request", "HX-Target"},
			ExposeHeaders: []string{"Content-Type", middleware.RequestIDHeader},
			AllowOriginFunc: func(origin string) bool {
				return true
			},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := loadCatalog(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to load tier catalog", "error", err)
		os.Exit(1)
	}

	store, err := initStore(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize tier store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close tier store", "error", err)
		}
	}()

	if err := store.Seed(ctx, catalog.DefaultFeatureRows(), catalog.DefaultLimitRows()); err != nil {
		log.Error("Failed to seed tier tables", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handlers.RegisterRoutes(router, handlers.Dependencies{
		Logger:       log,
		Store:        store,
		Resolver:     tier.NewResolver(log, store),
		Catalog:      catalog,
		Reviewer:     token.NewReviewer(cfg.JWTSecret),
		Metrics:      metrics.New(registry),
		AdminLimiter: middleware.NewRateLimiter(log, constant.AdminRequestsPerSecond, constant.AdminBurst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received, shutting down server...")

	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return
	}

	log.Info("Server exited gracefully")
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.DebugMode {
		return logger.Development(), nil
	}
	return logger.New(cfg.LogLevel)
}

// loadCatalog returns the embedded tier catalog, or the one stored in the cluster when
// --catalog-from-cluster is set.
func loadCatalog(ctx context.Context, log *logger.Logger, cfg *config.Config) (*tier.Catalog, error) {
	if !cfg.CatalogFromCluster {
		return tier.DefaultCatalog(), nil
	}

	clusterConfig, err := config.NewClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	return tier.NewCatalogLoader(log, clusterConfig.ClientSet, cfg.Namespace).Load(ctx)
}

// initStore creates the store based on the configured storage mode.
//
// Storage modes:
//   - in-memory (default): Ephemeral storage, data lost on restart
//   - disk: Persistent local storage using a file (single replica only)
//   - external: External database (PostgreSQL), supports multiple replicas
//
//nolint:ireturn // Returns Store interface by design for pluggable storage backends.
func initStore(ctx context.Context, log *logger.Logger, cfg *config.Config) (tier.Store, error) {
	switch cfg.StorageMode {
	case config.StorageModeInMemory, "":
		log.Info("Using in-memory storage (data will be lost on restart). " +
			"For persistent storage, use --storage=disk or --storage=external")
		return tier.NewSQLStore(ctx, log, ":memory:")

	case config.StorageModeDisk:
		dataPath := strings.TrimSpace(cfg.DataPath)
		if dataPath == "" {
			dataPath = config.DefaultDataPath
		}
		log.Info("Using persistent disk storage", "path", dataPath)
		return tier.NewSQLStore(ctx, log, "sqlite://"+dataPath)

	case config.StorageModeExternal:
		dbURL := strings.TrimSpace(cfg.DBConnectionURL)
		if dbURL == "" {
			return nil, errors.New("--db-connection-url is required when using --storage=external")
		}
		log.Info("Connecting to external database...")
		return tier.NewSQLStore(ctx, log, dbURL)

	default:
		return nil, fmt.Errorf("unknown storage mode: %q (valid modes: in-memory, disk, external)", cfg.StorageMode)
	}
}
