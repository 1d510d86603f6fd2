package model

import "time"

// LearningSource indicates how a learned pattern was created.
type LearningSource string

const (
	// LearnedFromExternal indicates the pattern came from the external
	// suggestion service.
	LearnedFromExternal LearningSource = "external"
	// LearnedFromManual indicates the pattern came from an operator
	// correction.
	LearnedFromManual LearningSource = "manual"
	// LearnedFromFeedback indicates the pattern was fed back from the
	// rule-based classifier.
	LearnedFromFeedback LearningSource = "feedback"
)

// LearnedPattern is a persisted input-to-category association built from
// past resolutions. One row exists per unique normalized title pattern,
// keyed by TitleHash.
type LearnedPattern struct {
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	TitleHash       string         `json:"title_hash"`
	TitlePattern    string         `json:"title_pattern"`
	Keywords        []string       `json:"keywords"`
	Brand           string         `json:"brand,omitempty"`
	SourceCategory  string         `json:"source_category,omitempty"`
	CategoryID      string         `json:"category_id"`
	CategoryName    string         `json:"category_name"`
	LearningSource  LearningSource `json:"learning_source"`
	PriceRangeMin   float64        `json:"price_range_min"`
	PriceRangeMax   float64        `json:"price_range_max"`
	ConfidenceScore int            `json:"confidence_score"`
	UsageCount      int            `json:"use_count"`
	SuccessRate     float64        `json:"success_rate"`
}

// HasPriceRange reports whether the pattern carries a usable price range.
func (p LearnedPattern) HasPriceRange() bool {
	return p.PriceRangeMax > 0 && p.PriceRangeMax >= p.PriceRangeMin
}

// PriceInRange reports whether price falls inside the pattern's range.
// Patterns without a range never match on price.
func (p LearnedPattern) PriceInRange(price float64) bool {
	if !p.HasPriceRange() {
		return false
	}
	return price >= p.PriceRangeMin && price <= p.PriceRangeMax
}
