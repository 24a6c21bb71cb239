package scopus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/scopus-metrics/internal/browser"
	"github.com/maltedev/scopus-metrics/internal/ratelimit"
)

const (
	BaseURL     = "https://www.scopus.com"
	SourcesPage = BaseURL + "/sources.uri"

	consentTimeout = 4 * time.Second
	buttonTimeout  = 2 * time.Second
	settleDelay    = 1500 * time.Millisecond
)

var (
	issnInputSelectors = []string{
		"input[name='issn']",
		"input#issn",
		"input[data-test='issn-input']",
		"input[placeholder*='ISSN']",
	}

	searchButtonSelectors = []string{
		"button:has-text('Search')",
		"button[type='submit']",
		"[data-test='search-button']",
	}
)

// SessionLauncher starts a browser session. *browser.Launcher satisfies it.
type SessionLauncher interface {
	Launch(opts *browser.Options) (*browser.Session, error)
}

type Scraper struct {
	launcher SessionLauncher
	limiter  ratelimit.RateLimiter
	logger   *slog.Logger
}

func NewScraper(launcher SessionLauncher, limiter ratelimit.RateLimiter, logger *slog.Logger) *Scraper {
	if limiter == nil {
		limiter = ratelimit.NewSimpleRateLimiter(0, 0)
	}
	return &Scraper{
		launcher: launcher,
		limiter:  limiter,
		logger:   logger.With("component", "scopus"),
	}
}

// Fetch looks up the journal with the given ISSN on the Scopus sources page.
// Every call runs in its own browser session which is closed before return.
func (s *Scraper) Fetch(ctx context.Context, issn string, opts FetchOptions) (*Metrics, error) {
	issn = strings.TrimSpace(issn)
	if issn == "" {
		return nil, scrapeError("ISSN must not be empty.", ErrEmptyISSN)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	logger := s.logger.With("issn", issn, "scrape_id", uuid.NewString())

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = opts.Headless
	browserOpts.Timeout = opts.Timeout

	session, err := s.launcher.Launch(browserOpts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser session", "error", err)
		}
	}()

	if cookies := ParseCookieHeader(opts.CookieHeader); len(cookies) > 0 {
		if err := session.AddCookies(cookies); err != nil {
			return nil, err
		}
		logger.Debug("cookies added", "count", len(cookies))
	}

	page, err := session.NewPage()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Info("loading sources page")

	if err := session.Navigate(page, SourcesPage); err != nil {
		if browser.IsTimeout(err) {
			return nil, scrapeError("Unable to load Scopus sources directory.", fmt.Errorf("%w: %v", ErrSourcesUnavailable, err))
		}
		return nil, err
	}

	s.acceptConsentBanner(page, logger)

	if err := s.submitISSN(page, issn, opts.Timeout, logger); err != nil {
		return nil, err
	}

	if err := sleep(ctx, settleDelay); err != nil {
		return nil, err
	}

	rows := page.Locator(fmt.Sprintf(`tr:has-text(%q)`, issn))
	count, err := rows.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count result rows: %w", err)
	}
	if count == 0 {
		logger.Info("no results")
		return nil, scrapeError(fmt.Sprintf("No results found for ISSN %s.", issn), ErrNoResults)
	}

	row := rows.First()
	data, err := row.Evaluate(rowScript, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read result row: %w", err)
	}
	tableRow := ParseTableRow(decodeRow(data))

	detail := s.fetchDetail(ctx, session, row, tableRow.SourceURL, issn, logger)

	metrics := merge(issn, tableRow, detail)

	logger.Info("lookup finished",
		"title", metrics.Title,
		"detail_page", detail != nil,
		"quartiles", len(metrics.Quartiles),
		"duration", time.Since(start),
	)

	return metrics, nil
}

func (s *Scraper) acceptConsentBanner(page playwright.Page, logger *slog.Logger) {
	err := page.Locator("button#onetrust-accept-btn-handler").Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(consentTimeout.Milliseconds())),
	})
	if err != nil {
		logger.Debug("consent banner not dismissed", "error", err)
	}
}

func (s *Scraper) submitISSN(page playwright.Page, issn string, timeout time.Duration, logger *slog.Logger) error {
	found := false
	for _, selector := range issnInputSelectors {
		input := page.Locator(selector).First()
		err := input.WaitFor(playwright.LocatorWaitForOptions{
			Timeout: playwright.Float(float64(timeout.Milliseconds())),
		})
		if err != nil {
			logger.Debug("ISSN input selector missed", "selector", selector)
			continue
		}

		if err := input.Fill(issn); err != nil {
			return fmt.Errorf("failed to fill ISSN input: %w", err)
		}
		if err := input.Press("Enter"); err != nil {
			logger.Debug("enter key press failed", "error", err)
		}
		found = true
		break
	}

	if !found {
		return scrapeError("Could not locate ISSN input field on Scopus page.", ErrISSNInputNotFound)
	}

	for _, selector := range searchButtonSelectors {
		err := page.Locator(selector).First().Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(float64(buttonTimeout.Milliseconds())),
		})
		if err == nil {
			logger.Debug("search submitted", "selector", selector)
			return nil
		}
	}

	return nil
}

// fetchDetail opens the source detail page linked from the result row and
// parses it. Any failure here leaves the caller with table data only.
func (s *Scraper) fetchDetail(ctx context.Context, session *browser.Session, row playwright.Locator, href, issn string, logger *slog.Logger) *Metrics {
	link := row.Locator("a[href*='sourceid']").First()
	if n, err := link.Count(); err != nil || n == 0 {
		return nil
	}

	page, err := session.Context().ExpectPage(func() error {
		return link.Click()
	}, playwright.BrowserContextExpectPageOptions{
		Timeout: playwright.Float(float64(session.Timeout().Milliseconds())),
	})
	if err != nil {
		if href == "" {
			logger.Warn("detail page did not open", "error", err)
			return nil
		}
		logger.Debug("detail link did not open a new page, loading it directly", "error", err)

		page, err = session.NewPage()
		if err != nil {
			logger.Warn("failed to open detail page", "error", err)
			return nil
		}
		if _, err := page.Goto(href, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		}); err != nil {
			page.Close()
			logger.Warn("failed to load detail page", "url", href, "error", err)
			return nil
		}
	}
	defer page.Close()

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		logger.Warn("detail page did not finish loading", "error", err)
		return nil
	}

	if err := sleep(ctx, settleDelay); err != nil {
		return nil
	}

	content, err := page.Content()
	if err != nil {
		logger.Warn("failed to read detail page", "error", err)
		return nil
	}

	detail, err := ParseDetailPage(content, page.URL(), issn)
	if err != nil {
		logger.Warn("failed to parse detail page", "error", err)
		return nil
	}

	return detail
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsScrapeError reports whether err should be surfaced to the caller as a
// Scopus-side failure.
func IsScrapeError(err error) bool {
	var se *ScrapeError
	return errors.As(err, &se)
}
