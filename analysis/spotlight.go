package analysis

import "github.com/c360studio/personascope/vocabulary/persona"

// Entry is one user's feedback for a spotlighted month, as consumed by
// the presentation layer.
type Entry struct {
	// UserID identifies the user.
	UserID string `json:"user_id"`

	// Persona is the dominant persona key, empty when nothing matched.
	Persona persona.Key `json:"persona"`

	// Label is the dominant persona's display label, empty when
	// nothing matched.
	Label string `json:"label"`

	// Text is the user's concatenated feedback for the month.
	Text string `json:"text"`
}

// MonthEntries lists the feedback entries for one month, in record
// order, keeping only entries whose text length is at least minTextLen.
func MonthEntries(records []ClassifiedRecord, month string, minTextLen int) []Entry {
	var entries []Entry
	for _, rec := range records {
		if rec.Month != month || len(rec.Text) < minTextLen {
			continue
		}
		e := Entry{UserID: rec.UserID, Persona: rec.Dominant, Text: rec.Text}
		if rec.Dominant != "" {
			e.Label = persona.Label(rec.Dominant)
		}
		entries = append(entries, e)
	}
	return entries
}
