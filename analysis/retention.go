// Package analysis derives retention and month×persona aggregates from
// normalized feedback records. Everything here is pure: the same records
// and keyword lists always produce the same aggregates.
package analysis

import (
	"strings"

	"github.com/c360studio/personascope/source/feedback"
	"github.com/c360studio/personascope/vocabulary/persona"
)

// ClassifiedRecord is a user-month record with its persona assignment
// and resolved retention.
type ClassifiedRecord struct {
	feedback.Record

	// Dominant is the highest-priority matching persona, empty when no
	// keyword matched.
	Dominant persona.Key

	// Flags records every independent persona match.
	Flags map[persona.Key]bool

	// Active reports whether the user was active in the following
	// calendar month, from the explicit marker or presence inference.
	Active bool
}

// PresenceIndex is the set of user|month keys present in a dataset.
// It is built once per pass, before any resolution, so inference never
// depends on processing order.
type PresenceIndex map[string]bool

// BuildPresenceIndex indexes every (user, month) pair in the records.
func BuildPresenceIndex(records []feedback.Record) PresenceIndex {
	idx := make(PresenceIndex, len(records))
	for _, r := range records {
		idx[r.Key()] = true
	}
	return idx
}

// truthyMarkers are the explicit active_next_month values read as true.
// Any other non-empty value is false.
var truthyMarkers = map[string]bool{"1": true, "true": true, "yes": true, "y": true}

// ResolveActive resolves the tri-state activity marker to a boolean.
// An explicit marker wins; otherwise the user counts as active iff a
// record exists for the calendar-successor month. A record in the last
// observed month therefore resolves false, which structurally depresses
// the most recent month's retention.
func ResolveActive(rec feedback.Record, presence PresenceIndex) bool {
	if raw := strings.TrimSpace(rec.ActiveNextMonth); raw != "" {
		return truthyMarkers[strings.ToLower(raw)]
	}
	next := feedback.NextMonth(rec.Month)
	if next == "" {
		return false
	}
	return presence[rec.UserID+"|"+next]
}

// ClassifyRecords classifies every record against the keyword lists and
// resolves retention against the full presence index.
func ClassifyRecords(records []feedback.Record, keywords persona.Keywords) []ClassifiedRecord {
	presence := BuildPresenceIndex(records)

	out := make([]ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		result := persona.Classify(rec.Text, keywords)
		out = append(out, ClassifiedRecord{
			Record:   rec,
			Dominant: result.Dominant,
			Flags:    result.Flags,
			Active:   ResolveActive(rec, presence),
		})
	}
	return out
}
