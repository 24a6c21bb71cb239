package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/maltedev/scopus-metrics/internal/scopus"
)

func TestRouter(t *testing.T) {
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, "0028-0836", mock.Anything).
		Return(&scopus.Metrics{ISSN: "0028-0836", Quartiles: []scopus.Quartile{}}, nil)

	router := NewRouter(newHandlers(f, Defaults{}), RouterOptions{
		AllowedOrigins: []string{"http://localhost:*"},
		Index: func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("index"))
		},
		Static: http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("asset:" + r.URL.Path))
		})),
	})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"index", http.MethodGet, "/", "", http.StatusOK, "index"},
		{"static", http.MethodGet, "/static/app.js", "", http.StatusOK, "asset:app.js"},
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"ok"`},
		{"scrape", http.MethodPost, "/api/scrape", `{"issn":"0028-0836"}`, http.StatusOK, `"success":true`},
		{"scrape wrong method", http.MethodGet, "/api/scrape", "", http.StatusMethodNotAllowed, ""},
		{"unknown", http.MethodGet, "/nope", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := NewRouter(newHandlers(new(MockFetcher), Defaults{}), RouterOptions{
		AllowedOrigins: []string{"http://localhost:*"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/scrape", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
