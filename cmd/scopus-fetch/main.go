package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/maltedev/scopus-metrics/internal/browser"
	"github.com/maltedev/scopus-metrics/internal/config"
	"github.com/maltedev/scopus-metrics/internal/scopus"
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
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, startPlaywright)
	cancel()
	os.Exit(code)
}

// run performs a single lookup and returns the process exit code. The driver
// is stopped on every path once it has started.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, newDriver driverFactory) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("scopus-fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		issn     = fs.String("issn", "", "ISSN to look up")
		cookie   = fs.String("cookie", cfg.Scopus.Cookie, "Raw Cookie header for an authenticated Scopus session")
		headless = fs.Bool("headless", cfg.Scopus.Headless, "Run browser in headless mode")
		timeout  = fs.Duration("timeout", cfg.Scopus.Timeout, "Timeout for navigation and selector waits")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *issn == "" && fs.NArg() > 0 {
		*issn = fs.Arg(0)
	}

	// Logs go to stderr so stdout stays clean JSON.
	log := logger.NewWithWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)

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

	scraper := scopus.NewScraper(launcher, nil, log)

	start := time.Now()
	metrics, err := scraper.Fetch(ctx, *issn, scopus.FetchOptions{
		CookieHeader: *cookie,
		Headless:     *headless,
		Timeout:      *timeout,
	})
	if err != nil {
		log.Error("lookup failed", "issn", *issn, "error", err, "duration", time.Since(start))
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(metrics); err != nil {
		log.Error("failed to encode result", "error", err)
		return 1
	}
	return 0
}
