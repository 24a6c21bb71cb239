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

	"github.com/joho/godotenv"

	"github.com/maltedev/scopus-metrics/internal/api"
	"github.com/maltedev/scopus-metrics/internal/browser"
	"github.com/maltedev/scopus-metrics/internal/config"
	"github.com/maltedev/scopus-metrics/internal/ratelimit"
	"github.com/maltedev/scopus-metrics/internal/scopus"
	"github.com/maltedev/scopus-metrics/internal/web"
	"github.com/maltedev/scopus-metrics/pkg/logger"
)

// driver is a started browser driver that must be stopped on exit.
type driver interface {
	scopus.SessionLauncher
	Close() error
}

type driverFactory func(*slog.Logger) (driver, error)

func startPlaywright(log *slog.Logger) (driver, error) {
	return browser.NewLauncher(log)
}

func main() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	os.Exit(run(startPlaywright))
}

// run serves until shutdown and returns the process exit code. Deferred
// cleanup, including stopping the browser driver, runs before it returns.
func run(newDriver driverFactory) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	launcher, err := newDriver(log)
	if err != nil {
		log.Error("failed to start browser driver", "error", err)
		return 1
	}
	defer func() {
		if err := launcher.Close(); err != nil {
			log.Error("failed to stop browser driver", "error", err)
		}
	}()

	limiter := ratelimit.NewSimpleRateLimiter(cfg.Scopus.MinInterval, cfg.Scopus.MaxInterval)
	scraper := scopus.NewScraper(launcher, limiter, log)

	handlers := api.NewHandlers(scraper, api.Defaults{
		Cookie:   cfg.Scopus.Cookie,
		Headless: cfg.Scopus.Headless,
		Timeout:  cfg.Scopus.Timeout,
	}, log)

	ui := web.New(web.IndexData{
		DefaultCookie: cfg.Scopus.Cookie,
		Headless:      cfg.Scopus.Headless,
	}, log)

	router := api.NewRouter(handlers, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.WriteTimeout,
		Index:          ui.Index,
		Static:         web.Static(),
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting",
		"addr", server.Addr,
		"headless", cfg.Scopus.Headless,
		"default_cookie", cfg.Scopus.Cookie != "",
		"timeout", cfg.Scopus.Timeout,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		return 1
	}

	<-done
	log.Info("server stopped")
	return 0
}
