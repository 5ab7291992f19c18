package metrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/ipo-scorecard/internal/contracts"
)

var (
	fullYearPattern  = regexp.MustCompile(`(?:19|20)\d{2}`)
	shortYearPattern = regexp.MustCompile(`(?i)^FY\s*'?(\d{2})(?:\s*[-/]\s*(\d{2}))?(?:\D|$)`)
)

// noYear marks a label without a recognizable fiscal year
const noYear = -1

// parseFiscalYear extracts the fiscal year from a label such as "FY2023", "2022-2023" or "FY23".
// The last four-digit year (1900~2099) wins. Otherwise only the two-digit group(s) right
// after a leading "FY" count: "FY22-23" → 2023, "FY23 (12M)" → 2023.
func parseFiscalYear(label string) int {
	if matches := fullYearPattern.FindAllString(label, -1); len(matches) > 0 {
		year, _ := strconv.Atoi(matches[len(matches)-1])
		return year
	}

	m := shortYearPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return noYear
	}
	yy := m[1]
	if m[2] != "" {
		yy = m[2]
	}
	year, _ := strconv.Atoi(yy)
	return 2000 + year
}

// orderChronologically returns rows sorted ascending by parsed fiscal year.
// Rows without a year go last in input order; when no row has a year the input order is kept.
func orderChronologically(rows []contracts.FinancialRow) []contracts.FinancialRow {
	ordered := make([]contracts.FinancialRow, len(rows))
	copy(ordered, rows)

	years := make([]int, len(rows))
	anyParsed := false
	for i, r := range rows {
		years[i] = parseFiscalYear(r.FY)
		if years[i] != noYear {
			anyParsed = true
		}
	}
	if !anyParsed {
		return ordered
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ya, yb := years[idx[a]], years[idx[b]]
		if ya == noYear || yb == noYear {
			return ya != noYear && yb == noYear
		}
		return ya < yb
	})

	for i, j := range idx {
		ordered[i] = rows[j]
	}
	return ordered
}

// trailingWindow keeps the most recent n rows
func trailingWindow(rows []contracts.FinancialRow, n int) []contracts.FinancialRow {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
