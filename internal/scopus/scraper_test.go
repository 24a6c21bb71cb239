package scopus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/scopus-metrics/internal/browser"
	"github.com/maltedev/scopus-metrics/internal/ratelimit"
)

type failingLauncher struct {
	calls int
	err   error
}

func (f *failingLauncher) Launch(*browser.Options) (*browser.Session, error) {
	f.calls++
	return nil, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchEmptyISSN(t *testing.T) {
	launcher := &failingLauncher{}
	s := NewScraper(launcher, nil, discardLogger())

	_, err := s.Fetch(context.Background(), "   ", FetchOptions{})

	require.Error(t, err)
	assert.True(t, IsScrapeError(err))
	assert.ErrorIs(t, err, ErrEmptyISSN)
	assert.Equal(t, "ISSN must not be empty.", err.Error())
	assert.Zero(t, launcher.calls)
}

func TestFetchLaunchFailure(t *testing.T) {
	launcher := &failingLauncher{err: errors.New("failed to launch browser: executable missing")}
	s := NewScraper(launcher, nil, discardLogger())

	_, err := s.Fetch(context.Background(), "0028-0836", FetchOptions{Headless: true})

	require.Error(t, err)
	assert.False(t, IsScrapeError(err))
	assert.Equal(t, 1, launcher.calls)
}

func TestFetchRateLimitCancelled(t *testing.T) {
	launcher := &failingLauncher{}
	limiter := ratelimit.NewSimpleRateLimiter(time.Hour, time.Hour)
	require.NoError(t, limiter.Wait(context.Background()))

	s := NewScraper(launcher, limiter, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Fetch(ctx, "0028-0836", FetchOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, launcher.calls)
}

func TestIsScrapeError(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", scrapeError("No results found for ISSN 1.", ErrNoResults))

	assert.True(t, IsScrapeError(wrapped))
	assert.ErrorIs(t, wrapped, ErrNoResults)
	assert.False(t, IsScrapeError(errors.New("boom")))
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}

func TestFetchLive(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test")
	}

	launcher, err := browser.NewLauncher(discardLogger())
	require.NoError(t, err)
	defer launcher.Close()

	s := NewScraper(launcher, nil, discardLogger())

	m, err := s.Fetch(context.Background(), "0028-0836", FetchOptions{
		CookieHeader: os.Getenv("SCOPUS_COOKIE"),
		Headless:     true,
		Timeout:      60 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "0028-0836", m.ISSN)
	assert.NotEmpty(t, m.Title)
}
