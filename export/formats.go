// Package export renders aggregation results for files and downstream
// tooling. It knows two formats: the CSV shape the dashboard re-imports
// and an indented JSON array for everything else.
package export

import (
	"fmt"
	"strings"
)

// Format identifies an export format.
type Format string

const (
	// FormatCSV is comma-delimited text with doubled-quote escaping.
	FormatCSV Format = "csv"

	// FormatJSON is an indented JSON array.
	FormatJSON Format = "json"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatCSV: {
		Name:        FormatCSV,
		MIMEType:    "text/csv",
		Extension:   ".csv",
		Description: "CSV - comma-separated values",
	},
	FormatJSON: {
		Name:        FormatJSON,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "JSON - indented array of records",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unknown export format: %q (supported: csv, json)", s)
	}
	return f, nil
}
