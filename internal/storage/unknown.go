package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hareba/catres/internal/common"
	"github.com/hareba/catres/internal/model"
)

// RecordUnknown creates or increments the unknown-pattern row for the
// query's title hash. Repeat sightings bump the occurrence count and
// priority; the original snapshot is never overwritten.
func (s *SQLiteStorage) RecordUnknown(ctx context.Context, query model.ProductQuery) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateQuery(query); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unknown_patterns (
			title_hash, title, brand, source_category, price,
			occurrence_count, priority_score, needs_learning
		) VALUES (?, ?, ?, ?, ?, 1, ?, 1)
		ON CONFLICT(title_hash) DO UPDATE SET
			occurrence_count = occurrence_count + 1,
			priority_score = priority_score + 10,
			needs_learning = 1,
			last_seen = CURRENT_TIMESTAMP
	`, query.TitleHash(), query.Title, query.Brand, query.SourceCategory,
		query.Price, model.BasePriority(query.Price))
	if err != nil {
		return fmt.Errorf("failed to record unknown pattern: %w", err)
	}

	return nil
}

// GetUnknownPattern fetches an unknown pattern by title hash.
func (s *SQLiteStorage) GetUnknownPattern(ctx context.Context, titleHash string) (*model.UnknownPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(titleHash, "titleHash"); err != nil {
		return nil, err
	}

	var p model.UnknownPattern
	err := s.db.QueryRowContext(ctx, `
		SELECT title_hash, title, brand, source_category, price,
			occurrence_count, priority_score, needs_learning, first_seen, last_seen
		FROM unknown_patterns
		WHERE title_hash = ?
	`, titleHash).Scan(
		&p.TitleHash, &p.Title, &p.Brand, &p.SourceCategory, &p.Price,
		&p.OccurrenceCount, &p.PriorityScore, &p.NeedsLearning, &p.FirstSeen, &p.LastSeen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unknown pattern: %w", err)
	}

	return &p, nil
}

// ListLearningTargets returns unknown patterns still needing learning,
// highest priority first.
func (s *SQLiteStorage) ListLearningTargets(ctx context.Context, limit int) ([]model.UnknownPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title_hash, title, brand, source_category, price,
			occurrence_count, priority_score, needs_learning, first_seen, last_seen
		FROM unknown_patterns
		WHERE needs_learning = 1
		ORDER BY priority_score DESC, occurrence_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unknown patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.UnknownPattern
	for rows.Next() {
		var p model.UnknownPattern
		if err := rows.Scan(
			&p.TitleHash, &p.Title, &p.Brand, &p.SourceCategory, &p.Price,
			&p.OccurrenceCount, &p.PriorityScore, &p.NeedsLearning, &p.FirstSeen, &p.LastSeen,
		); err != nil {
			return nil, fmt.Errorf("failed to scan unknown pattern: %w", err)
		}
		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

// ClearNeedsLearning marks an unknown pattern as handled by an operator.
func (s *SQLiteStorage) ClearNeedsLearning(ctx context.Context, titleHash string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(titleHash, "titleHash"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE unknown_patterns
		SET needs_learning = 0, last_seen = CURRENT_TIMESTAMP
		WHERE title_hash = ?
	`, titleHash)
	if err != nil {
		return fmt.Errorf("failed to clear unknown pattern: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}

	return nil
}
