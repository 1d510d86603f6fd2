// Package model defines the core domain models used throughout the application.
package model

import (
	"github.com/hareba/catres/internal/normalize"
)

// ProductQuery describes a product to be resolved to a marketplace category.
// Title is the only required field; everything else is best-effort metadata
// from the source site.
type ProductQuery struct {
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Brand          string  `json:"brand,omitempty"`
	SourceCategory string  `json:"source_category,omitempty"`
	Price          float64 `json:"price,omitempty"`
}

// Keywords returns the normalized keyword set derived from the title,
// description and brand.
func (q ProductQuery) Keywords() []string {
	return normalize.Keywords(q.Title, q.Description, q.Brand)
}

// Fingerprint returns a stable hash of the normalized title, brand and
// source category, used for caching and deduplication.
func (q ProductQuery) Fingerprint() string {
	return normalize.Fingerprint(q.Title, q.Brand, q.SourceCategory)
}

// TitleHash returns a stable hash of the normalized title alone. It keys
// learned and unknown pattern rows.
func (q ProductQuery) TitleHash() string {
	return normalize.Fingerprint(q.Title)
}
