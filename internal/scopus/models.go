package scopus

import "time"

// Quartile is a subject area and the journal's quartile ranking in it.
type Quartile struct {
	Subject  string `json:"subject"`
	Quartile string `json:"quartile"`
}

// Metrics is what a lookup returns. Metric values are kept as the text shown
// by Scopus; nil means the page did not show one.
type Metrics struct {
	ISSN      string     `json:"issn"`
	Title     string     `json:"title"`
	CiteScore *string    `json:"citeScore"`
	SNIP      *string    `json:"snip"`
	SJR       *string    `json:"sjr"`
	Quartiles []Quartile `json:"quartiles"`
	SourceURL *string    `json:"sourceUrl"`
}

// TableRow holds the fields read from a row of the sources search results.
type TableRow struct {
	Title        string
	CiteScore    string
	SNIP         string
	SJR          string
	ISSN         string
	QuartileHint string
	Quartiles    []Quartile
	SourceURL    string
}

type FetchOptions struct {
	CookieHeader string
	Headless     bool
	Timeout      time.Duration
}

// merge combines the search row with the detail page. Detail values win
// field by field; quartiles fall back to the row only when the detail page
// listed none.
func merge(issn string, row TableRow, detail *Metrics) *Metrics {
	m := &Metrics{
		ISSN:      issn,
		Title:     row.Title,
		CiteScore: optional(row.CiteScore),
		SNIP:      optional(row.SNIP),
		SJR:       optional(row.SJR),
		Quartiles: row.Quartiles,
		SourceURL: optional(row.SourceURL),
	}

	if detail != nil {
		if detail.Title != "" {
			m.Title = detail.Title
		}
		m.CiteScore = firstSet(detail.CiteScore, m.CiteScore)
		m.SNIP = firstSet(detail.SNIP, m.SNIP)
		m.SJR = firstSet(detail.SJR, m.SJR)
		if len(detail.Quartiles) > 0 {
			m.Quartiles = detail.Quartiles
		}
		m.SourceURL = firstSet(detail.SourceURL, m.SourceURL)
	}

	if m.Quartiles == nil {
		m.Quartiles = []Quartile{}
	}

	return m
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstSet(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
