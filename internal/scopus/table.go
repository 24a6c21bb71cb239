package scopus

import (
	"regexp"
	"strings"
)

// rowScript runs against the first result row and reports the column
// headers of its table, the row's cell texts and the source link, if any.
const rowScript = `(row) => {
	const table = row.closest('table');
	const headers = table
		? Array.from(table.querySelectorAll('thead th')).map(th => th.textContent.trim())
		: [];
	const cells = Array.from(row.querySelectorAll('td')).map(td => td.textContent.trim());
	const link = row.querySelector('a[href*="sourceid"], a[href*="sources"]');
	return { headers, cells, link: link && link.href ? link.href : '' };
}`

var (
	subjectSplitPattern = regexp.MustCompile(`\n|,|;`)
	rowQuartilePattern  = regexp.MustCompile(`(?i)(.*?)(Q[1-4])`)
)

// ParseTableRow maps a result row onto its columns by header name.
func ParseTableRow(headers, cells []string, link string) TableRow {
	var row TableRow

	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	subjectColumn := -1
	for i, header := range headers {
		header = strings.ToLower(strings.TrimSpace(header))
		value := cell(i)

		if strings.Contains(header, "source title") {
			row.Title = value
		}
		if strings.Contains(header, "citescore") {
			row.CiteScore = value
		}
		if strings.Contains(header, "snip") {
			row.SNIP = value
		}
		if strings.Contains(header, "sjr") {
			row.SJR = value
		}
		if strings.Contains(header, "issn") {
			row.ISSN = value
		}
		if strings.Contains(header, "quartile") {
			row.QuartileHint = value
		}
		if subjectColumn == -1 && strings.Contains(header, "subject area") {
			subjectColumn = i
		}
	}

	if subjectColumn != -1 {
		row.Quartiles = parseSubjectAreas(cell(subjectColumn))
	}

	row.SourceURL = strings.TrimSpace(link)

	return row
}

func parseSubjectAreas(value string) []Quartile {
	var quartiles []Quartile

	for _, section := range subjectSplitPattern.Split(value, -1) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		match := rowQuartilePattern.FindStringSubmatch(section)
		if match == nil {
			continue
		}

		quartiles = append(quartiles, Quartile{
			Subject:  strings.TrimSpace(match[1]),
			Quartile: strings.ToUpper(match[2]),
		})
	}

	return quartiles
}

// decodeRow unpacks the value returned by rowScript.
func decodeRow(data interface{}) (headers, cells []string, link string) {
	obj, ok := data.(map[string]interface{})
	if !ok {
		return nil, nil, ""
	}

	headers = toStrings(obj["headers"])
	cells = toStrings(obj["cells"])
	if s, ok := obj["link"].(string); ok {
		link = s
	}

	return headers, cells, link
}

func toStrings(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := item.(string)
		out = append(out, s)
	}
	return out
}
