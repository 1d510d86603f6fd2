// Package rules implements the deterministic keyword/price fallback
// classifier used when no learned or external signal clears the
// confidence bar.
package rules

import (
	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/normalize"
)

// MinScore is the raw score below which no rule wins.
const MinScore = 20

// matchWeight is the raw score contributed per matched keyword.
const matchWeight = 20

// Rule maps a keyword set to a category with a base confidence and an
// optional price band.
type Rule struct {
	Name           string
	Keywords       []string
	CategoryID     string
	CategoryName   string
	CategoryPath   []string
	BaseConfidence int
	PriceMin       float64
	PriceMax       float64
	Priority       int
}

// priceCompatible reports whether the query price sits inside the rule's
// band. Rules without a band accept any price.
func (r Rule) priceCompatible(price float64) bool {
	if r.PriceMax <= 0 {
		return true
	}
	return price >= r.PriceMin && price <= r.PriceMax
}

// Classifier evaluates an ordered rule table. It is deterministic and
// side-effect-free; feedback learning is the caller's concern.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over the given rules, ordered by
// priority (highest first) with table order as the tiebreak.
func NewClassifier(rules []Rule) *Classifier {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	// Stable insertion sort; the table is small.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Priority > ordered[j-1].Priority; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return &Classifier{rules: ordered}
}

// NewDefaultClassifier creates a classifier with the built-in rule table.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules())
}

// Classify scores each rule as matchWeight per matched keyword scaled by
// the rule's base confidence, and returns the highest scorer at or above
// MinScore, or nil when no rule qualifies.
func (c *Classifier) Classify(query model.ProductQuery) *model.CategoryCandidate {
	keywords := query.Keywords()
	if len(keywords) == 0 {
		return nil
	}

	var best *model.CategoryCandidate
	bestScaled := 0.0

	for _, rule := range c.rules {
		matched := normalize.KeywordOverlap(rule.Keywords, keywords)
		if matched == 0 {
			continue
		}

		raw := float64(matchWeight * matched)
		if raw < MinScore {
			continue
		}
		scaled := raw * float64(rule.BaseConfidence) / 100

		if scaled <= bestScaled {
			continue
		}

		confidence := 40 + 10*matched
		if rule.priceCompatible(query.Price) && query.Price > 0 {
			confidence += 10
		}
		if confidence > rule.BaseConfidence {
			confidence = rule.BaseConfidence
		}

		best = &model.CategoryCandidate{
			CategoryID:   rule.CategoryID,
			CategoryName: rule.CategoryName,
			CategoryPath: rule.CategoryPath,
			RawScore:     scaled,
			Confidence:   model.ClampConfidence(confidence),
			Source:       model.SourceRule,
		}
		bestScaled = scaled
	}

	return best
}
