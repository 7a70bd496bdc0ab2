package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Rakesh-6305/project-store/internal/config"
	"github.com/Rakesh-6305/project-store/internal/handlers"
	"github.com/Rakesh-6305/project-store/internal/predict"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The form still renders without models; predictions then report the load failure.
	predictor := &predict.Predictor{}
	if bundle, err := predict.LoadBundle(filepath.Join(cfg.Predictor.ModelsDir, predict.BundleFile)); err != nil {
		slog.Error("Failed to load models", "dir", cfg.Predictor.ModelsDir, "error", err)
	} else {
		predictor.Bundle = bundle
		slog.Info("Models loaded", "dir", cfg.Predictor.ModelsDir)
	}
	if dist, err := predict.LoadDistribution(cfg.Predictor.DatasetPath); err != nil {
		slog.Warn("Failed to load dataset, chart disabled", "path", cfg.Predictor.DatasetPath, "error", err)
	} else {
		predictor.Distribution = dist
	}

	templates := handlers.NewTemplateCache()
	if err := templates.Load(cfg.Predictor.TemplatesDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	h := &predict.Handler{Predictor: predictor, Templates: templates}

	server := &http.Server{
		Addr:              ":" + cfg.Predictor.Port,
		Handler:           handlers.LoggingMiddleware(handlers.SecurityHeadersMiddleware(h.Routes())),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Predictor starting", "port", cfg.Predictor.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Predictor stopped.")
}
