package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakesh-6305/project-store/internal/config"
	"github.com/Rakesh-6305/project-store/internal/handlers"
	"github.com/Rakesh-6305/project-store/internal/payment"
	"github.com/Rakesh-6305/project-store/internal/store"
	"github.com/Rakesh-6305/project-store/internal/uploads"
	"github.com/gorilla/sessions"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	uploadDir, err := uploads.New(cfg.UploadDir)
	if err != nil {
		slog.Error("Failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(cfg.TemplatesDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Routes
	deps := &handlers.Deps{
		Store:          db,
		SessionStore:   sessionStore,
		Templates:      templates,
		Uploads:        uploadDir,
		UPI:            payment.UPI{ID: cfg.UPIID, Payee: cfg.UPIPayee},
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}

	registerLimiter := handlers.NewRateLimiter(cfg.RegisterRateWindow)
	defer registerLimiter.Stop()

	mux := handlers.Routes(deps, cfg.StaticDir, registerLimiter)

	// 6. Middleware Setup
	CSRF := handlers.CSRFMiddleware(
		cfg.CSRFKey,
		cfg.CookieSecure,
		[]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"},
	)
	protected := CSRF(mux)

	// Chain: Logger -> Security Headers -> Body limit -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			http.MaxBytesHandler(protected, cfg.MaxUploadBytes()),
		),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
