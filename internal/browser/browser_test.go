package browser

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Headless {
		t.Error("Expected headless to be true by default")
	}

	if opts.Timeout != 30*time.Second {
		t.Errorf("Expected timeout to be 30s, got %v", opts.Timeout)
	}

	assert.Equal(t, "en-US", opts.Locale)
	assert.Equal(t, "dark", opts.ColorScheme)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
	assert.Equal(t, "en-US,en;q=0.9", opts.ExtraHeaders["Accept-Language"])
	assert.Contains(t, opts.ExtraHeaders["Accept"], "text/html")
}

func TestContextOptions(t *testing.T) {
	opts := DefaultOptions()
	ctxOpts := contextOptions(opts)

	require.NotNil(t, ctxOpts.UserAgent)
	assert.Equal(t, DefaultUserAgent, *ctxOpts.UserAgent)
	require.NotNil(t, ctxOpts.Locale)
	assert.Equal(t, "en-US", *ctxOpts.Locale)
	assert.Equal(t, playwright.ColorSchemeDark, ctxOpts.ColorScheme)
	require.NotNil(t, ctxOpts.Viewport)
	assert.Equal(t, 1920, ctxOpts.Viewport.Width)

	opts.ColorScheme = ""
	opts.ViewportWidth = 0
	ctxOpts = contextOptions(opts)
	assert.Nil(t, ctxOpts.ColorScheme)
	assert.Nil(t, ctxOpts.Viewport)
}

func TestToPlaywrightCookies(t *testing.T) {
	cookies := toPlaywrightCookies([]Cookie{
		{Name: "SCSessionID", Value: "abc", Domain: ".scopus.com", Path: "/", Secure: true},
	})

	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "SCSessionID", c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, ".scopus.com", *c.Domain)
	assert.Equal(t, "/", *c.Path)
	assert.False(t, *c.HttpOnly)
	assert.True(t, *c.Secure)
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(fmt.Errorf("wait for locator: %w", playwright.ErrTimeout)))
	assert.False(t, IsTimeout(errors.New("target closed")))
	assert.False(t, IsTimeout(nil))
}
