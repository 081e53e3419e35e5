package feedback

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

var (
	monthExact   = regexp.MustCompile(`^\d{4}-\d{2}$`)
	monthPattern = regexp.MustCompile(`\d{4}-\d{2}`)
)

// NormalizeMonth canonicalizes an arbitrary date-ish string to YYYY-MM.
// A string already in that form passes through verbatim; a string
// containing the pattern anywhere (timestamps, "2025-09-14 08:12")
// yields the embedded month; anything else goes through general date
// parsing. Unparseable input yields the empty string.
func NormalizeMonth(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if monthExact.MatchString(s) {
		return s
	}
	if m := monthPattern.FindString(s); m != "" {
		return m
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01")
}

// NextMonth returns the calendar successor of a YYYY-MM month, rolling
// the year at December. Input that is not a canonical month yields the
// empty string.
func NextMonth(month string) string {
	if !monthExact.MatchString(month) {
		return ""
	}
	year, _ := strconv.Atoi(month[:4])
	m, _ := strconv.Atoi(month[5:])
	m++
	if m > 12 {
		m = 1
		year++
	}
	return fmt.Sprintf("%04d-%02d", year, m)
}
