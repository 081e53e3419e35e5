package export

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/c360studio/personascope/analysis"
	"github.com/c360studio/personascope/vocabulary/persona"
)

// aggregateColumns is the flat-row column order, matching the field
// order of analysis.MonthPersonaAggregate.
var aggregateColumns = []string{
	"month", "persona", "label", "users", "retained", "churned",
	"retention", "retention_mom", "users_mom",
}

// Aggregates renders the flat aggregate rows in the requested format.
func Aggregates(set *analysis.AggregateSet, format Format) (string, error) {
	switch format {
	case FormatCSV:
		return aggregatesCSV(set), nil
	case FormatJSON:
		data, err := json.MarshalIndent(set.Rows(), "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal aggregates: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", fmt.Errorf("unknown export format: %q", format)
	}
}

func aggregatesCSV(set *analysis.AggregateSet) string {
	var w CSVWriter
	w.WriteRecord(aggregateColumns)
	for _, row := range set.Rows() {
		w.WriteRecord([]string{
			row.Month,
			string(row.Persona),
			row.Label,
			strconv.Itoa(row.Users),
			strconv.Itoa(row.Retained),
			strconv.Itoa(row.Churned),
			formatFloat(row.Retention),
			formatFloatPtr(row.RetentionMoM),
			formatIntPtr(row.UsersMoM),
		})
	}
	return w.String()
}

// SeriesKind selects which dense series to render.
type SeriesKind string

const (
	// SeriesRetention is the per-month retention fraction series.
	SeriesRetention SeriesKind = "retention"

	// SeriesUsers is the per-month raw user count series.
	SeriesUsers SeriesKind = "users"
)

// Series renders one dense per-month series, one column per persona,
// zero-filled for personas without an aggregate in a month.
func Series(set *analysis.AggregateSet, kind SeriesKind, format Format) (string, error) {
	switch format {
	case FormatCSV:
		return seriesCSV(set, kind)
	case FormatJSON:
		switch kind {
		case SeriesRetention:
			data, err := json.MarshalIndent(set.RetentionSeries(), "", "  ")
			if err != nil {
				return "", fmt.Errorf("failed to marshal series: %w", err)
			}
			return string(data) + "\n", nil
		case SeriesUsers:
			data, err := json.MarshalIndent(set.UserSeries(), "", "  ")
			if err != nil {
				return "", fmt.Errorf("failed to marshal series: %w", err)
			}
			return string(data) + "\n", nil
		default:
			return "", fmt.Errorf("unknown series kind: %q", kind)
		}
	default:
		return "", fmt.Errorf("unknown export format: %q", format)
	}
}

func seriesCSV(set *analysis.AggregateSet, kind SeriesKind) (string, error) {
	keys := persona.Keys()
	header := make([]string, 0, len(keys)+1)
	header = append(header, "month")
	for _, key := range keys {
		header = append(header, string(key))
	}

	var w CSVWriter
	w.WriteRecord(header)

	switch kind {
	case SeriesRetention:
		for _, point := range set.RetentionSeries() {
			fields := []string{point.Month}
			for _, key := range keys {
				fields = append(fields, formatFloat(point.Values[key]))
			}
			w.WriteRecord(fields)
		}
	case SeriesUsers:
		for _, point := range set.UserSeries() {
			fields := []string{point.Month}
			for _, key := range keys {
				fields = append(fields, strconv.Itoa(point.Values[key]))
			}
			w.WriteRecord(fields)
		}
	default:
		return "", fmt.Errorf("unknown series kind: %q", kind)
	}
	return w.String(), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func formatIntPtr(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
