package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Launcher owns the Playwright driver process. Browsers are launched per
// session so each caller can pick its own headless mode.
type Launcher struct {
	pw     *playwright.Playwright
	logger *slog.Logger
}

// Session is one browser plus one context. Close it when done.
type Session struct {
	browser playwright.Browser
	context playwright.BrowserContext
	timeout time.Duration
	logger  *slog.Logger
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	Locale         string
	ColorScheme    string
	ViewportWidth  int
	ViewportHeight int
	ExtraHeaders   map[string]string
}

// Cookie is a browser cookie scoped to a domain.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	HTTPOnly bool
	Secure   bool
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      DefaultUserAgent,
		Locale:         "en-US",
		ColorScheme:    "dark",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		ExtraHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
	}
}

func NewLauncher(logger *slog.Logger) (*Launcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	return &Launcher{
		pw:     pw,
		logger: logger.With("component", "browser"),
	}, nil
}

func (l *Launcher) Launch(opts *Options) (*Session, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	browser, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(contextOptions(opts))
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	l.logger.Debug("browser session started", "headless", opts.Headless)

	return &Session{
		browser: browser,
		context: context,
		timeout: opts.Timeout,
		logger:  l.logger,
	}, nil
}

func (l *Launcher) Close() error {
	if l.pw == nil {
		return nil
	}
	pw := l.pw
	l.pw = nil
	if err := pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

func contextOptions(opts *Options) playwright.BrowserNewContextOptions {
	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(opts.UserAgent),
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		ExtraHttpHeaders:  opts.ExtraHeaders,
	}

	if opts.Locale != "" {
		contextOpts.Locale = playwright.String(opts.Locale)
	}

	switch opts.ColorScheme {
	case "dark":
		contextOpts.ColorScheme = playwright.ColorSchemeDark
	case "light":
		contextOpts.ColorScheme = playwright.ColorSchemeLight
	}

	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		contextOpts.Viewport = &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		}
	}

	return contextOpts
}

func (s *Session) NewPage() (playwright.Page, error) {
	page, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	page.SetDefaultTimeout(float64(s.timeout.Milliseconds()))

	return page, nil
}

func (s *Session) Context() playwright.BrowserContext {
	return s.context
}

func (s *Session) Timeout() time.Duration {
	return s.timeout
}

func (s *Session) AddCookies(cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	if err := s.context.AddCookies(toPlaywrightCookies(cookies)); err != nil {
		return fmt.Errorf("failed to add cookies: %w", err)
	}
	return nil
}

func toPlaywrightCookies(cookies []Cookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		})
	}
	return out
}

// Navigate loads url and waits until the network goes idle.
func (s *Session) Navigate(page playwright.Page, url string) error {
	_, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Session) Close() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	return errors.Join(errs...)
}

// IsTimeout reports whether err came from a Playwright wait that ran out of time.
func IsTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout)
}
