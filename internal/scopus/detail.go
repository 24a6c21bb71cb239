package scopus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	numberPattern          = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	// Standalone markers only, so "FAQ1" is not taken for a quartile.
	quartileMarkerPattern  = regexp.MustCompile(`(?i)\bQ[1-4]\b`)
	subjectQuartilePattern = regexp.MustCompile(`(?i)(.+?)\s*\b(Q[1-4])\b`)
)

// ParseDetailPage reads title, metrics and quartiles from a source detail page.
func ParseDetailPage(content, pageURL, issn string) (*Metrics, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page: %w", err)
	}

	nodes := flatten(doc.Nodes)

	return &Metrics{
		ISSN:      issn,
		Title:     extractTitle(doc),
		CiteScore: optional(extractMetric(nodes, "CiteScore")),
		SNIP:      optional(extractMetric(nodes, "SNIP")),
		SJR:       optional(extractMetric(nodes, "SJR")),
		Quartiles: extractQuartiles(nodes),
		SourceURL: optional(pageURL),
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	var title string
	doc.Find("h1").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title = strings.TrimSpace(s.Text())
		return title == ""
	})
	if title != "" {
		return title
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}

	return ""
}

// extractMetric looks for "<label> <number>" inside a single text node first,
// then falls back to the first number that follows an element whose text
// starts with the label. Bare years are skipped in both cases so that a
// heading like "CiteScore 2023" does not win over the value beneath it.
func extractMetric(nodes []*html.Node, label string) string {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*:?\s*([0-9]+(?:\.[0-9]+)?)`)

	for _, n := range nodes {
		if !isText(n) {
			continue
		}
		for _, match := range pattern.FindAllStringSubmatch(n.Data, -1) {
			if !isYear(match[1]) {
				return match[1]
			}
		}
	}

	lowerLabel := strings.ToLower(label)
	for i, n := range nodes {
		if n.Type != html.ElementNode || skipped(n) {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(nodeText(n))), lowerLabel) {
			continue
		}

		for _, next := range nodes[i+1:] {
			if !isText(next) {
				continue
			}
			for _, value := range numberPattern.FindAllString(next.Data, -1) {
				if !isYear(value) {
					return value
				}
			}
		}
		return ""
	}

	return ""
}

// extractQuartiles reads "<subject> Q<n>" pairs around each quartile marker.
// When the marker sits alone in its element (a table cell, a badge) the
// grandparent is tried as well.
func extractQuartiles(nodes []*html.Node) []Quartile {
	var quartiles []Quartile
	seen := make(map[Quartile]bool)

	for _, n := range nodes {
		if !isText(n) || !quartileMarkerPattern.MatchString(n.Data) {
			continue
		}

		for scope, level := n.Parent, 0; scope != nil && level < 2; scope, level = scope.Parent, level+1 {
			matches := subjectQuartilePattern.FindAllStringSubmatch(joinedText(scope), -1)
			if len(matches) == 0 {
				continue
			}

			for _, match := range matches {
				q := Quartile{
					Subject:  strings.TrimSpace(match[1]),
					Quartile: strings.ToUpper(match[2]),
				}
				if q.Subject == "" || seen[q] {
					continue
				}
				seen[q] = true
				quartiles = append(quartiles, q)
			}
			break
		}
	}

	return quartiles
}

// flatten lists every node below roots in document order.
func flatten(roots []*html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		out = append(out, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}

func isText(n *html.Node) bool {
	return n.Type == html.TextNode && n.Parent != nil && !skipped(n.Parent)
}

func skipped(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for _, d := range flatten([]*html.Node{n}) {
		if isText(d) {
			b.WriteString(d.Data)
		}
	}
	return b.String()
}

// joinedText is the element's text with each piece trimmed and joined by a space.
func joinedText(n *html.Node) string {
	var parts []string
	for _, d := range flatten([]*html.Node{n}) {
		if !isText(d) {
			continue
		}
		if s := strings.TrimSpace(d.Data); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func isYear(value string) bool {
	if len(value) != 4 || strings.Contains(value, ".") {
		return false
	}
	year, err := strconv.Atoi(value)
	return err == nil && year >= 1900 && year <= 2100
}
