package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hareba/catres/internal/model"
)

// Validation errors returned at the store boundary.
var (
	ErrNilContext   = errors.New("context must not be nil")
	ErrEmptyField   = errors.New("field must not be empty")
	ErrInvalidQuery = errors.New("invalid product query")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyField, field)
	}
	return nil
}

func validateQuery(query model.ProductQuery) error {
	if strings.TrimSpace(query.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuery)
	}
	if query.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidQuery)
	}
	return nil
}

// joinKeywords flattens a keyword set for storage in a TEXT column.
func joinKeywords(keywords []string) string {
	return strings.Join(keywords, " ")
}

// splitKeywords reverses joinKeywords.
func splitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Fields(s)
}
