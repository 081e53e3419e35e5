package analysis

import "github.com/c360studio/personascope/vocabulary/persona"

// RetentionPoint is one dense chart row: a month with a retention
// fraction for every persona, zero-filled where no aggregate exists.
type RetentionPoint struct {
	Month  string                  `json:"month"`
	Values map[persona.Key]float64 `json:"values"`
}

// UserPoint is one dense chart row of raw user counts per persona.
type UserPoint struct {
	Month  string              `json:"month"`
	Values map[persona.Key]int `json:"values"`
}

// RetentionSeries builds a dense per-month retention series across all
// seven personas.
func (s *AggregateSet) RetentionSeries() []RetentionPoint {
	points := make([]RetentionPoint, 0, len(s.months))
	for _, month := range s.months {
		p := RetentionPoint{Month: month, Values: make(map[persona.Key]float64, 7)}
		for _, key := range persona.Keys() {
			if agg, ok := s.Lookup(month, key); ok {
				p.Values[key] = agg.Retention
			} else {
				p.Values[key] = 0
			}
		}
		points = append(points, p)
	}
	return points
}

// UserSeries builds a dense per-month user-count series across all
// seven personas.
func (s *AggregateSet) UserSeries() []UserPoint {
	points := make([]UserPoint, 0, len(s.months))
	for _, month := range s.months {
		p := UserPoint{Month: month, Values: make(map[persona.Key]int, 7)}
		for _, key := range persona.Keys() {
			if agg, ok := s.Lookup(month, key); ok {
				p.Values[key] = agg.Users
			} else {
				p.Values[key] = 0
			}
		}
		points = append(points, p)
	}
	return points
}
