package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draft-together/server/internal/api"
	"github.com/draft-together/server/internal/config"
	"github.com/draft-together/server/internal/ingest"
	"github.com/draft-together/server/internal/logging"
	"github.com/draft-together/server/internal/registry"
	"github.com/draft-together/server/internal/repository/postgres"
	"github.com/draft-together/server/internal/validation"
	log "github.com/sirupsen/logrus"
)

const (
	catalogSyncPeriod = time.Hour
	roleSyncPeriod    = 24 * time.Hour
	flushPeriod       = 30 * time.Second
)

func main() {
	cfg := config.Load()

	if err := logging.Init(cfg.LogLevel); err != nil {
		log.WithError(err).Fatal("unrecognized log level")
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Seed the validation set from the stored catalog so edits validate
	// before the first ingest run completes.
	validator := validation.NewSet()
	champions, err := repos.Champion.List(context.Background())
	if err != nil {
		log.WithError(err).Fatal("failed to load champion catalog")
	}
	ids := make([]int32, 0, len(champions))
	for _, champion := range champions {
		ids = append(ids, champion.ID)
	}
	validator.Replace(ids)
	log.WithField("champions", len(ids)).Info("validation set seeded")

	// Initialize room registry
	reg := registry.NewRegistry(repos.Draft)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	roleSync := ingest.NewRoleSync(repos.Champion)
	catalogSync := ingest.NewCatalogSync(repos.Champion, repos.Version, validator, roleSync, cfg.DragontailDir)
	go ingest.NewRunner("catalog", catalogSync, catalogSyncPeriod).Run(workerCtx)
	go ingest.NewRunner("roles", roleSync, roleSyncPeriod).Run(workerCtx)

	flusher := registry.NewFlusher(reg, flushPeriod)
	flusherDone := make(chan struct{})
	go func() {
		defer close(flusherDone)
		flusher.Run(workerCtx)
	}()

	// Initialize router
	router := api.NewRouter(repos, reg, validator, cfg)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	// Stop workers and wait for the flusher, which writes every resident
	// draft on its way out.
	stopWorkers()
	<-flusherDone

	log.Info("server stopped")
}
