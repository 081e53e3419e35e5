// Package feedback normalizes parsed CSV rows into canonical user-month
// records. It tolerates both the aggregate export shape (user_id, month,
// text) and raw survey exports with loosely-named or truncated columns,
// and merges multiple rows for the same user and month into one record.
package feedback

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/c360studio/personascope/source/csvtab"
)

// Record is the canonical unit of analysis: one user's aggregated
// feedback for one calendar month.
type Record struct {
	// UserID is the trimmed, non-empty user identifier.
	UserID string `json:"user_id"`

	// Month is the canonical YYYY-MM calendar month.
	Month string `json:"month"`

	// Text is the newline-join of all raw text entries for this user
	// and month, in input row order.
	Text string `json:"text"`

	// ActiveNextMonth is the raw tri-state activity marker: the trimmed
	// source value when the export carried one, empty when retention
	// must be inferred from presence.
	ActiveNextMonth string `json:"active_next_month,omitempty"`
}

// Key returns the composite identity of the record.
func (r Record) Key() string {
	return r.UserID + "|" + r.Month
}

// SurveyTextColumn is the full survey question header used by the
// feedback export. Survey tools routinely truncate or mangle it, which
// is why extraction falls back to fuzzier strategies.
const SurveyTextColumn = "Beschrijf in je eigen woorden je ervaring van de afgelopen maand"

// userIDColumns are the candidate user identifier headers, tried in
// order, case-sensitively.
var userIDColumns = []string{"user_id", "userid", "user", "Network ID", "network_id"}

// dateColumns are the fallback date headers when no month column exists.
var dateColumns = []string{"created_at", "Start Date (UTC)"}

// genericTextColumns are the last-resort text headers.
var genericTextColumns = []string{"text", "message", "body"}

// Normalizer maps raw rows onto Records.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer. A nil logger falls back to
// slog.Default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize converts a parsed table into user-month records. Rows with a
// missing user id or an unparseable month are dropped without error;
// remaining rows are grouped by (user, month) with texts concatenated in
// encounter order and the last non-empty activity marker kept. Output is
// sorted by month ascending, then user id.
func (n *Normalizer) Normalize(table csvtab.Table) []Record {
	hasMonthColumn := containsHeader(table.Header, "month")

	grouped := make(map[string]*Record)
	var order []string
	dropped := 0

	for _, row := range table.Rows {
		userID := firstNonEmpty(row, userIDColumns)
		if userID == "" {
			dropped++
			continue
		}

		var month string
		if hasMonthColumn {
			month = NormalizeMonth(row["month"])
		} else {
			month = NormalizeMonth(firstNonEmpty(row, dateColumns))
		}
		if month == "" {
			dropped++
			continue
		}

		text := extractText(row, table.Header)
		active := strings.TrimSpace(row["active_next_month"])

		key := userID + "|" + month
		rec, ok := grouped[key]
		if !ok {
			rec = &Record{UserID: userID, Month: month}
			grouped[key] = rec
			order = append(order, key)
		}
		if rec.Text == "" {
			rec.Text = text
		} else {
			rec.Text += "\n" + text
		}
		if active != "" {
			rec.ActiveNextMonth = active
		}
	}

	if dropped > 0 {
		n.logger.Warn("dropped rows without user id or parseable month",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(order)))
	}

	records := make([]Record, 0, len(order))
	for _, key := range order {
		records = append(records, *grouped[key])
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Month != records[j].Month {
			return records[i].Month < records[j].Month
		}
		return records[i].UserID < records[j].UserID
	})
	return records
}

// extractText pulls the feedback text out of a row. Strategies are tried
// in order: the exact survey header, any header containing a survey
// question fragment, the second column positionally, then generic text
// headers.
func extractText(row csvtab.Row, header []string) string {
	for _, strategy := range textStrategies {
		if text, ok := strategy(row, header); ok {
			return text
		}
	}
	return ""
}

// textStrategy attempts one extraction approach; ok reports whether the
// strategy claims the row (an empty claimed value is still a claim).
type textStrategy func(row csvtab.Row, header []string) (string, bool)

var textStrategies = []textStrategy{
	surveyHeaderExact,
	surveyHeaderFragment,
	secondColumn,
	genericColumns,
}

func surveyHeaderExact(row csvtab.Row, _ []string) (string, bool) {
	if v := strings.TrimSpace(row[SurveyTextColumn]); v != "" {
		return v, true
	}
	return "", false
}

func surveyHeaderFragment(row csvtab.Row, header []string) (string, bool) {
	for _, name := range header {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "beschrijf") && !strings.Contains(lower, "suggestie") {
			continue
		}
		if v := strings.TrimSpace(row[name]); v != "" {
			return v, true
		}
	}
	return "", false
}

// reservedColumns are structural headers that can never hold feedback
// text; the positional fallback must not swallow them.
var reservedColumns = func() map[string]bool {
	m := map[string]bool{"month": true, "active_next_month": true}
	for _, c := range userIDColumns {
		m[c] = true
	}
	for _, c := range dateColumns {
		m[c] = true
	}
	return m
}()

func secondColumn(row csvtab.Row, header []string) (string, bool) {
	if len(header) < 2 || reservedColumns[header[1]] {
		return "", false
	}
	return strings.TrimSpace(row[header[1]]), true
}

func genericColumns(row csvtab.Row, _ []string) (string, bool) {
	if v := firstNonEmpty(row, genericTextColumns); v != "" {
		return v, true
	}
	return "", false
}

func firstNonEmpty(row csvtab.Row, columns []string) string {
	for _, name := range columns {
		if v := strings.TrimSpace(row[name]); v != "" {
			return v
		}
	}
	return ""
}

func containsHeader(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}
