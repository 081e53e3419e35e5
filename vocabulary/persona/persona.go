// Package persona defines the fixed catalog of feedback personas and
// the keyword classifier that assigns them. The catalog itself (keys,
// priorities, labels) is immutable; keyword lists are owned by the
// caller and passed into classification explicitly so that edits take
// effect on the next recomputation.
package persona

import "strings"

// Key identifies a persona in the catalog.
type Key string

// Persona keys, from most to least severe.
const (
	// TrustErosion marks feedback where the user signals losing trust
	// in the product. Highest priority: it always wins ties.
	TrustErosion Key = "trust_erosion"

	// Emotional marks strongly emotionally charged feedback.
	Emotional Key = "emotional"

	// Escalation marks feedback threatening complaints, cancellation
	// or legal steps.
	Escalation Key = "escalation"

	// Reliability marks feedback about outages, crashes and errors.
	Reliability Key = "reliability"

	// Overload marks feedback about the product feeling overwhelming.
	Overload Key = "overload"

	// Veteran marks long-time users referencing how things used to be.
	Veteran Key = "veteran"

	// Suggestion marks constructive improvement ideas. Lowest priority.
	Suggestion Key = "suggestion"
)

// Persona is one entry of the fixed catalog.
type Persona struct {
	// Key is the unique persona identifier.
	Key Key

	// Priority orders personas for dominance resolution; 1 is highest.
	Priority int

	// Label is the display name.
	Label string
}

// catalog is ordered by priority. Dominance resolution iterates this
// slice and short-circuits on the first match, so it must stay sorted.
var catalog = []Persona{
	{Key: TrustErosion, Priority: 1, Label: "Vertrouwensverlies"},
	{Key: Emotional, Priority: 2, Label: "Emotioneel geraakt"},
	{Key: Escalation, Priority: 3, Label: "Escalatie"},
	{Key: Reliability, Priority: 4, Label: "Betrouwbaarheidsklachten"},
	{Key: Overload, Priority: 5, Label: "Overbelast"},
	{Key: Veteran, Priority: 6, Label: "Veteraan"},
	{Key: Suggestion, Priority: 7, Label: "Suggestie"},
}

// Catalog returns the personas in priority order.
func Catalog() []Persona {
	out := make([]Persona, len(catalog))
	copy(out, catalog)
	return out
}

// Keys returns all persona keys in priority order.
func Keys() []Key {
	keys := make([]Key, len(catalog))
	for i, p := range catalog {
		keys[i] = p.Key
	}
	return keys
}

// ByKey looks up a catalog entry.
func ByKey(key Key) (Persona, bool) {
	for _, p := range catalog {
		if p.Key == key {
			return p, true
		}
	}
	return Persona{}, false
}

// Label returns the display label for a key, or the key itself when
// unknown.
func Label(key Key) string {
	if p, ok := ByKey(key); ok {
		return p.Label
	}
	return string(key)
}

// Keywords maps persona keys to their match phrases.
type Keywords map[Key][]string

// DefaultKeywords returns a fresh copy of the default Dutch keyword
// lists. Callers may mutate the result freely.
func DefaultKeywords() Keywords {
	kw := make(Keywords, len(defaultKeywords))
	for key, list := range defaultKeywords {
		kw[key] = append([]string(nil), list...)
	}
	return kw
}

var defaultKeywords = Keywords{
	TrustErosion: {
		"ik reken hierop",
		"niet veilig",
		"vertrouwen kwijt",
		"durf er niet meer op te bouwen",
		"laat me in de steek",
	},
	Emotional: {
		"klaar mee",
		"gefrustreerd",
		"om gek van te worden",
		"wanhopig",
		"ten einde raad",
	},
	Escalation: {
		"klacht ingediend",
		"opzeggen",
		"overstappen naar",
		"eis een oplossing",
		"juridische stappen",
	},
	Reliability: {
		"storing",
		"valt uit",
		"foutmelding",
		"crasht",
		"doet het niet",
		"loopt vast",
	},
	Overload: {
		"te veel tegelijk",
		"onoverzichtelijk",
		"door de bomen het bos",
		"te ingewikkeld",
		"overweldigend",
	},
	Veteran: {
		"al jaren",
		"sinds het begin",
		"vroeger werkte",
		"oude versie",
		"van het eerste uur",
	},
	Suggestion: {
		"suggestie",
		"zou fijn zijn",
		"misschien een idee",
		"tip:",
		"zouden jullie kunnen",
	},
}

// ParseList parses a comma-separated keyword list as entered by a user:
// entries are trimmed and empty entries discarded.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Result is the classifier output for one text.
type Result struct {
	// Dominant is the highest-priority matching persona, or empty when
	// nothing matched.
	Dominant Key

	// Flags records every independent keyword match; personas are not
	// mutually exclusive.
	Flags map[Key]bool
}

// Classify matches text against each persona's keyword list. Matching
// is a case-insensitive substring check of each phrase. The dominant
// persona is the matching entry with the lowest priority number.
func Classify(text string, keywords Keywords) Result {
	lower := strings.ToLower(text)
	result := Result{Flags: make(map[Key]bool, len(catalog))}

	for _, p := range catalog {
		matched := false
		for _, phrase := range keywords[p.Key] {
			phrase = strings.ToLower(strings.TrimSpace(phrase))
			if phrase != "" && strings.Contains(lower, phrase) {
				matched = true
				break
			}
		}
		result.Flags[p.Key] = matched
		if matched && result.Dominant == "" {
			result.Dominant = p.Key
		}
	}
	return result
}
