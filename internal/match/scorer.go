// Package match implements the weighted-overlap scoring of learned
// patterns against product queries.
package match

import (
	"math"

	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/normalize"
)

// MinScore is the raw score below which a pattern is discarded.
const MinScore = 30

// Scoring weights for the composite formula. Title similarity dominates,
// followed by brand and source-category agreement; usage statistics give
// well-worn patterns a small edge.
const (
	titleWeight          = 40.0
	keywordWeight        = 10.0
	brandWeight          = 25.0
	sourceCategoryWeight = 20.0
	priceRangeWeight     = 15.0
	successRateWeight    = 10.0
	usageWeight          = 2.0
	usageCap             = 10
)

// Score computes the composite match score of a learned pattern against a
// query. Higher is better; scores below MinScore should be discarded.
func Score(query model.ProductQuery, p model.LearnedPattern) float64 {
	score := titleWeight * normalize.Jaccard(query.Title, p.TitlePattern)
	score += keywordWeight * float64(normalize.KeywordOverlap(query.Keywords(), p.Keywords))

	if p.Brand != "" && normalize.Title(query.Brand) == normalize.Title(p.Brand) {
		score += brandWeight
	}
	if p.SourceCategory != "" && normalize.Title(query.SourceCategory) == normalize.Title(p.SourceCategory) {
		score += sourceCategoryWeight
	}
	if p.PriceInRange(query.Price) {
		score += priceRangeWeight
	}

	score += successRateWeight * (p.SuccessRate / 100)

	usage := p.UsageCount
	if usage > usageCap {
		usage = usageCap
	}
	score += usageWeight * float64(usage)

	return score
}

// Confidence maps a raw score to a 0-100 confidence value. An exact title
// match lets a high stored confidence (e.g. a manual correction at 95)
// shine through even when the composite score lands lower.
func Confidence(query model.ProductQuery, p model.LearnedPattern, score float64) int {
	c := int(math.Round(score))
	if query.TitleHash() == p.TitleHash && p.ConfidenceScore > c {
		c = p.ConfidenceScore
	}
	return model.ClampConfidence(c)
}
