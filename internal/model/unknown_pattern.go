package model

import "time"

// UnknownPattern records a query that resolved below the confidence bar so
// it can be prioritized for future learning. Rows are incremented on
// repeat sightings, never overwritten.
type UnknownPattern struct {
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
	TitleHash       string    `json:"title_hash"`
	Title           string    `json:"title"`
	Brand           string    `json:"brand,omitempty"`
	SourceCategory  string    `json:"source_category,omitempty"`
	Price           float64   `json:"price"`
	PriorityScore   float64   `json:"priority_score"`
	OccurrenceCount int       `json:"occurrence_count"`
	NeedsLearning   bool      `json:"needs_learning"`
}

// BasePriority derives the initial priority score for an unknown pattern.
// Expensive items surface first so budget-limited learning is spent where
// the listing value is highest.
func BasePriority(price float64) float64 {
	p := 10 + price/1000
	if p > 60 {
		p = 60
	}
	return p
}
