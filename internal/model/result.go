package model

// FeeInfo carries the marketplace fee attached to a resolved category.
// Confidence is the trustworthiness of the fee figure itself, independent
// of the category assignment.
type FeeInfo struct {
	FeePercent float64 `json:"fee_percent"`
	Confidence int     `json:"confidence"`
}

// ResolutionResult is the final answer handed back to the listing
// pipeline: the winning candidate enriched with fee and attribute data,
// plus ranked runners-up.
type ResolutionResult struct {
	Best               CategoryCandidate   `json:"best"`
	Fee                FeeInfo             `json:"fee"`
	RequiredAttributes map[string][]string `json:"required_attributes,omitempty"`
	Alternates         []CategoryCandidate `json:"alternates,omitempty"`
	ProcessingTimeMs   int64               `json:"processing_time_ms"`
}
