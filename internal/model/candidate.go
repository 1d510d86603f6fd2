package model

// SourceMethod indicates which pipeline stage produced a candidate.
type SourceMethod string

// Source method constants.
const (
	SourceCache    SourceMethod = "cache"
	SourceLearned  SourceMethod = "learned"
	SourceExternal SourceMethod = "external"
	SourceRule     SourceMethod = "rule"
	SourceFallback SourceMethod = "fallback"
)

// CategoryCandidate is a scored category proposal from one of the
// resolution stages.
type CategoryCandidate struct {
	CategoryID   string       `json:"category_id"`
	CategoryName string       `json:"category_name"`
	CategoryPath []string     `json:"category_path,omitempty"`
	RawScore     float64      `json:"raw_score"`
	Confidence   int          `json:"confidence"`
	Source       SourceMethod `json:"source"`
}

// ClampConfidence bounds a raw confidence value to the [0, 100] range.
func ClampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
