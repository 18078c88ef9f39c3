package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/damon-houk/pair-group-store/internal/application/service"
	"github.com/damon-houk/pair-group-store/internal/domain/repository"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/config"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/db"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/handler"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/middleware"
	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetDefaultLogger().Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, cfg.LogLevel)
	logger.SetDefaultLogger(log)

	log.Info("Starting pair group store", map[string]interface{}{
		"backend":  cfg.Backend,
		"data_dir": cfg.DataDir,
		"addr":     cfg.Addr(),
	})

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("Failed to create data directory", map[string]interface{}{
			"data_dir": cfg.DataDir,
			"error":    err.Error(),
		})
	}

	repo, closeRepo, err := openRepository(cfg, log)
	if err != nil {
		log.Fatal("Failed to open repository", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer closeRepo()

	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewMetrics(reg)
	if err != nil {
		log.Fatal("Failed to register metrics", map[string]interface{}{
			"error": err.Error(),
		})
	}

	pairGroupService := service.NewPairGroupService(repo, log)
	pairGroupHandler := handler.NewPairGroupHandler(pairGroupService, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(metrics.Middleware)
	pairGroupHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": cfg.Addr()})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", map[string]interface{}{
				"error": err.Error(),
			})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Server stopped", nil)
}

// openRepository builds the configured backend and a function releasing it
func openRepository(cfg *config.Config, log logger.Logger) (repository.PairGroupRepository, func(), error) {
	switch cfg.Backend {
	case config.BadgerBackend:
		opts := badger.DefaultOptions(filepath.Join(cfg.DataDir, "badger"))
		opts.Logger = nil

		badgerDB, err := badger.Open(opts)
		if err != nil {
			return nil, nil, err
		}

		closeDB := func() {
			if err := badgerDB.Close(); err != nil {
				log.Error("Error closing BadgerDB", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
		return db.NewBadgerPairGroupRepository(badgerDB, log), closeDB, nil
	default:
		return db.NewFileSystemPairGroupRepository(afero.NewOsFs(), cfg.DataDir, log), func() {}, nil
	}
}
