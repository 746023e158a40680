package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"researchflow-backend/application/commands"
	"researchflow-backend/application/services"
	"researchflow-backend/domain/core/aggregates"
	"researchflow-backend/infrastructure/config"
	"researchflow-backend/infrastructure/persistence/file"
	"researchflow-backend/interfaces/http/rest"
	"researchflow-backend/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	var metrics *observability.HistoryMetrics
	if cfg.EnableMetrics {
		metrics = observability.NewHistoryMetrics(prometheus.DefaultRegisterer)
	}

	doc := aggregates.NewDocument()
	historyStore := file.NewHistoryStore(cfg.ProjectDir, logger)
	projectStore := file.NewProjectStore(cfg.ProjectDir, logger)

	editor := services.NewEditor(doc, historyStore, projectStore, logger, metrics)
	editor.History().SetLimit(cfg.HistoryLimit)
	commands.SetDescriptionMergeWindow(time.Duration(cfg.MergeWindowSeconds) * time.Second)
	if _, err := services.NewController(editor, logger); err != nil {
		logger.Fatal("Failed to register intent handlers", zap.Error(err))
	}

	if err := editor.OpenProject(ctx); err != nil {
		logger.Warn("Could not open project, starting empty", zap.Error(err))
	}

	// Runtime-changeable limits reload from the dynamic config file
	// when one is present in the project directory.
	dynPath := filepath.Join(cfg.ProjectDir, "runtime.yaml")
	if _, statErr := os.Stat(dynPath); statErr == nil {
		watcher, err := config.NewWatcher(dynPath, logger)
		if err != nil {
			logger.Warn("Dynamic config unavailable", zap.Error(err))
		} else {
			watcher.OnChange(func(dc *config.DynamicConfig) {
				editor.History().SetLimit(dc.HistoryLimit)
				commands.SetDescriptionMergeWindow(time.Duration(dc.MergeWindowSeconds) * time.Second)
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	router := rest.NewRouter(editor, cfg, logger)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("project_dir", cfg.ProjectDir),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := editor.SaveProject(shutdownCtx); err != nil {
		logger.Error("Failed to save project on shutdown", zap.Error(err))
	}

	if err := logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
