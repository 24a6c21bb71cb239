package scopus

import (
	"strings"

	"github.com/maltedev/scopus-metrics/internal/browser"
)

const cookieDomain = ".scopus.com"

// ParseCookieHeader turns a raw "name=value; name2=value2" header into
// browser cookies for the Scopus domain. Segments without a name are dropped.
func ParseCookieHeader(header string) []browser.Cookie {
	var cookies []browser.Cookie

	for _, segment := range strings.Split(header, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		name, value, ok := strings.Cut(segment, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}

		cookies = append(cookies, browser.Cookie{
			Name:     name,
			Value:    strings.TrimSpace(value),
			Domain:   cookieDomain,
			Path:     "/",
			HTTPOnly: false,
			Secure:   true,
		})
	}

	return cookies
}
