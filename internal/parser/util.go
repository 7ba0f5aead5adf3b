package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Spanish month names as written on budget cover pages.
var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// Date phrase as it appears on cover pages: "14 de marzo de 2023".
var spanishDatePattern = regexp.MustCompile(`(\d{1,2})\s+de\s+([a-záéíóú]+)\s+de\s+(\d{4})`)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents removes combining diacritics: "márzo" -> "marzo".
func foldAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// parseAmount converts a locale-formatted amount like "1,234.56" or
// "$150.00" to a float. Returns nil when the remainder is not a valid
// decimal numeral; it never fails hard.
func parseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseSpanishDate scans free text for a "<day> de <month> de <year>"
// phrase and returns it as an ISO YYYY-MM-DD string. Returns "" when no
// phrase is found, the month name is unknown, or the day is out of range
// for that month.
func parseSpanishDate(text string) string {
	m := spanishDatePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return ""
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	month, ok := spanishMonths[foldAccents(m[2])]
	if !ok {
		return ""
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return ""
	}
	// time.Date normalizes out-of-range days (Feb 31 -> Mar 3), so check
	// the components round-trip instead of trusting the result.
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}
