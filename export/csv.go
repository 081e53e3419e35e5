package export

import "strings"

// CSVWriter accumulates comma-delimited output. Fields containing a
// comma, quote or line break are wrapped in double quotes with embedded
// quotes doubled; records are separated by a bare \n.
type CSVWriter struct {
	sb strings.Builder
}

// WriteRecord appends one record.
func (w *CSVWriter) WriteRecord(fields []string) {
	for i, field := range fields {
		if i > 0 {
			w.sb.WriteByte(',')
		}
		w.sb.WriteString(escapeField(field))
	}
	w.sb.WriteByte('\n')
}

// String returns the accumulated CSV output.
func (w *CSVWriter) String() string {
	return w.sb.String()
}

func escapeField(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
