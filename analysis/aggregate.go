package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/personascope/vocabulary/persona"
)

// Mode selects how a record contributes to persona buckets.
type Mode string

const (
	// ModeDominant counts each record in at most one bucket: its
	// dominant persona, or nowhere when nothing matched.
	ModeDominant Mode = "dominant"

	// ModeMulti counts a record in every bucket whose flag is set. A
	// single user can increment several personas for the same month,
	// so summing users across personas is not a unique-user total.
	ModeMulti Mode = "multi"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDominant:
		return ModeDominant, nil
	case ModeMulti:
		return ModeMulti, nil
	default:
		return "", fmt.Errorf("unknown classification mode: %q (expected dominant or multi)", s)
	}
}

// MonthPersonaAggregate holds the metrics for one (month, persona)
// bucket that received at least one contributing record.
type MonthPersonaAggregate struct {
	// Month is the YYYY-MM bucket month.
	Month string `json:"month"`

	// Persona is the bucket's persona key.
	Persona persona.Key `json:"persona"`

	// Label is the persona display label.
	Label string `json:"label"`

	// Users is the count of distinct contributing users.
	Users int `json:"users"`

	// Retained and Churned partition Users by resolved activity.
	Retained int `json:"retained"`
	Churned  int `json:"churned"`

	// Retention is Retained/Users, zero when Users is zero.
	Retention float64 `json:"retention"`

	// RetentionMoM and UsersMoM are deltas against the nearest earlier
	// month that produced an aggregate for the same persona. Nil for a
	// persona's first aggregate.
	RetentionMoM *float64 `json:"retention_mom"`
	UsersMoM     *int     `json:"users_mom"`
}

type bucketKey struct {
	month   string
	persona persona.Key
}

// AggregateSet is the aggregation output: the flat rows, the distinct
// sorted month list, and an index for constant-time point lookup.
type AggregateSet struct {
	rows   []MonthPersonaAggregate
	months []string
	index  map[bucketKey]int
}

// Aggregate groups classified records into month×persona buckets and
// computes per-persona month-over-month deltas. Months with no
// qualifying records for a persona produce no aggregate and are skipped
// in that persona's delta chain, not treated as zero.
func Aggregate(records []ClassifiedRecord, mode Mode) *AggregateSet {
	type bucket struct {
		users    map[string]bool
		retained int
		churned  int
	}

	buckets := make(map[bucketKey]*bucket)
	monthSeen := make(map[string]bool)

	contribute := func(month string, key persona.Key, rec ClassifiedRecord) {
		bk := bucketKey{month: month, persona: key}
		b, ok := buckets[bk]
		if !ok {
			b = &bucket{users: make(map[string]bool)}
			buckets[bk] = b
		}
		if b.users[rec.UserID] {
			return
		}
		b.users[rec.UserID] = true
		if rec.Active {
			b.retained++
		} else {
			b.churned++
		}
	}

	for _, rec := range records {
		monthSeen[rec.Month] = true
		switch mode {
		case ModeMulti:
			for _, key := range persona.Keys() {
				if rec.Flags[key] {
					contribute(rec.Month, key, rec)
				}
			}
		default:
			if rec.Dominant != "" {
				contribute(rec.Month, rec.Dominant, rec)
			}
		}
	}

	months := make([]string, 0, len(monthSeen))
	for m := range monthSeen {
		months = append(months, m)
	}
	sort.Strings(months)

	set := &AggregateSet{
		months: months,
		index:  make(map[bucketKey]int, len(buckets)),
	}

	// Emit rows month-major, personas in priority order within a month,
	// then chain deltas per persona over its own aggregates.
	for _, month := range months {
		for _, key := range persona.Keys() {
			bk := bucketKey{month: month, persona: key}
			b, ok := buckets[bk]
			if !ok {
				continue
			}
			users := len(b.users)
			row := MonthPersonaAggregate{
				Month:    month,
				Persona:  key,
				Label:    persona.Label(key),
				Users:    users,
				Retained: b.retained,
				Churned:  b.churned,
			}
			if users > 0 {
				row.Retention = float64(b.retained) / float64(users)
			}
			set.index[bk] = len(set.rows)
			set.rows = append(set.rows, row)
		}
	}

	prev := make(map[persona.Key]*MonthPersonaAggregate)
	for i := range set.rows {
		row := &set.rows[i]
		if p := prev[row.Persona]; p != nil {
			dRet := row.Retention - p.Retention
			dUsers := row.Users - p.Users
			row.RetentionMoM = &dRet
			row.UsersMoM = &dUsers
		}
		prev[row.Persona] = row
	}

	return set
}

// Rows returns the aggregates sorted by month ascending, personas in
// priority order within a month.
func (s *AggregateSet) Rows() []MonthPersonaAggregate {
	return s.rows
}

// Months returns the distinct months observed across all classified
// records, sorted ascending.
func (s *AggregateSet) Months() []string {
	return s.months
}

// Lookup returns the aggregate for a (month, persona) point.
func (s *AggregateSet) Lookup(month string, key persona.Key) (MonthPersonaAggregate, bool) {
	i, ok := s.index[bucketKey{month: month, persona: key}]
	if !ok {
		return MonthPersonaAggregate{}, false
	}
	return s.rows[i], true
}
