package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/maltedev/scopus-metrics/internal/scopus"
)

const (
	msgISSNRequired = "กรุณากรอก ISSN"
	msgFetchFailed  = "ไม่สามารถดึงข้อมูลได้"
)

// MetricsFetcher is implemented by *scopus.Scraper.
type MetricsFetcher interface {
	Fetch(ctx context.Context, issn string, opts scopus.FetchOptions) (*scopus.Metrics, error)
}

// Defaults are applied when a request leaves cookie or headless unset.
type Defaults struct {
	Cookie   string
	Headless bool
	Timeout  time.Duration
}

type Handlers struct {
	fetcher  MetricsFetcher
	defaults Defaults
	logger   *slog.Logger
}

func NewHandlers(fetcher MetricsFetcher, defaults Defaults, logger *slog.Logger) *Handlers {
	return &Handlers{
		fetcher:  fetcher,
		defaults: defaults,
		logger:   logger.With("component", "api"),
	}
}

// ScrapeRequest is the body of POST /api/scrape. Headless stays raw so that
// non-boolean values can be read by truthiness instead of failing the decode.
type ScrapeRequest struct {
	ISSN     string          `json:"issn"`
	Cookie   string          `json:"cookie"`
	Headless json.RawMessage `json:"headless"`
}

// ScrapeResponse wraps both outcomes; Data is set on success, Message on failure.
type ScrapeResponse struct {
	Success bool            `json:"success"`
	Data    *scopus.Metrics `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Scrape runs one ISSN lookup. A body that is not a JSON object counts as an
// empty one; fields of the wrong type are ignored individually.
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	req := decodeScrapeRequest(r.Body)

	issn := strings.TrimSpace(req.ISSN)
	if issn == "" {
		h.respondJSON(w, http.StatusBadRequest, ScrapeResponse{Message: msgISSNRequired})
		return
	}

	cookie := strings.TrimSpace(req.Cookie)
	if cookie == "" {
		cookie = strings.TrimSpace(h.defaults.Cookie)
	}

	headless := h.defaults.Headless
	if v, ok := rawValue(req.Headless); ok && v != nil {
		headless = truthy(v)
	}

	metrics, err := h.fetcher.Fetch(r.Context(), issn, scopus.FetchOptions{
		CookieHeader: cookie,
		Headless:     headless,
		Timeout:      h.defaults.Timeout,
	})
	if err != nil {
		if scopus.IsScrapeError(err) {
			h.logger.Warn("scopus lookup failed", "issn", issn, "error", err)
			h.respondJSON(w, http.StatusBadGateway, ScrapeResponse{Message: err.Error()})
			return
		}
		h.logger.Error("lookup failed", "issn", issn, "error", err)
		h.respondJSON(w, http.StatusInternalServerError, ScrapeResponse{Message: msgFetchFailed})
		return
	}

	h.respondJSON(w, http.StatusOK, ScrapeResponse{Success: true, Data: metrics})
}

func decodeScrapeRequest(body io.Reader) ScrapeRequest {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return ScrapeRequest{}
	}

	var req ScrapeRequest
	if v, ok := rawValue(fields["issn"]); ok {
		req.ISSN, _ = v.(string)
	}
	if v, ok := rawValue(fields["cookie"]); ok {
		req.Cookie, _ = v.(string)
	}
	req.Headless = fields["headless"]
	return req
}

func rawValue(raw json.RawMessage) (interface{}, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// truthy treats false, 0, "", [] and {} as false and anything else as true.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
