package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hareba/catres/internal/common"
	"github.com/hareba/catres/internal/match"
	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/normalize"
	"github.com/hareba/catres/internal/service"
)

const learnedPatternColumns = `
	title_hash, title_pattern, keywords, brand, source_category,
	price_range_min, price_range_max, category_id, category_name,
	confidence_score, usage_count, success_rate, learning_source,
	created_at, updated_at`

// FindBestMatch scores all stored patterns against the query and returns
// the top scorer, or nil when nothing clears the minimum score. The
// winning pattern's usage count is incremented atomically.
func (s *SQLiteStorage) FindBestMatch(ctx context.Context, query model.ProductQuery) (*service.PatternMatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT`+learnedPatternColumns+` FROM learned_patterns`)
	if err != nil {
		return nil, fmt.Errorf("failed to query learned patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var best *model.LearnedPattern
	bestScore := 0.0
	for rows.Next() {
		pattern, scanErr := scanLearnedPattern(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		if score := match.Score(query, *pattern); score > bestScore {
			best = pattern
			bestScore = score
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating learned patterns: %w", err)
	}

	if best == nil || bestScore < match.MinScore {
		return nil, nil
	}

	// Increment-on-match keeps the counter monotonic under concurrent
	// resolutions without a read-modify-write cycle.
	if _, err := s.db.ExecContext(ctx, `
		UPDATE learned_patterns
		SET usage_count = usage_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE title_hash = ?
	`, best.TitleHash); err != nil {
		return nil, fmt.Errorf("failed to increment usage count: %w", err)
	}
	best.UsageCount++

	return &service.PatternMatch{
		Pattern:    *best,
		Score:      bestScore,
		Confidence: match.Confidence(query, *best, bestScore),
	}, nil
}

// RecordLearning upserts a learned pattern keyed by the query's title
// hash. Manual corrections overwrite the stored category; other sources
// only bump the usage count on conflict so accumulated statistics
// survive.
func (s *SQLiteStorage) RecordLearning(ctx context.Context, query model.ProductQuery, categoryID, categoryName string, confidence int, source model.LearningSource) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateQuery(query); err != nil {
		return err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return err
	}
	if err := validateString(categoryName, "categoryName"); err != nil {
		return err
	}

	priceMin, priceMax := priceRange(query.Price)

	var conflictClause string
	if source == model.LearnedFromManual {
		conflictClause = `
			ON CONFLICT(title_hash) DO UPDATE SET
				category_id = excluded.category_id,
				category_name = excluded.category_name,
				confidence_score = excluded.confidence_score,
				learning_source = excluded.learning_source,
				price_range_min = excluded.price_range_min,
				price_range_max = excluded.price_range_max,
				usage_count = usage_count + 1,
				updated_at = CURRENT_TIMESTAMP`
	} else {
		conflictClause = `
			ON CONFLICT(title_hash) DO UPDATE SET
				usage_count = usage_count + 1,
				updated_at = CURRENT_TIMESTAMP`
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learned_patterns (
			title_hash, title_pattern, keywords, brand, source_category,
			price_range_min, price_range_max, category_id, category_name,
			confidence_score, learning_source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`+conflictClause,
		query.TitleHash(),
		normalize.Title(query.Title),
		joinKeywords(query.Keywords()),
		normalize.Title(query.Brand),
		normalize.Title(query.SourceCategory),
		priceMin, priceMax,
		categoryID, categoryName,
		model.ClampConfidence(confidence),
		string(source),
	)
	if err != nil {
		return fmt.Errorf("failed to record learning: %w", err)
	}

	return nil
}

// GetPattern fetches a learned pattern by title hash.
func (s *SQLiteStorage) GetPattern(ctx context.Context, titleHash string) (*model.LearnedPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(titleHash, "titleHash"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT`+learnedPatternColumns+` FROM learned_patterns WHERE title_hash = ?`, titleHash)
	pattern, err := scanLearnedPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return pattern, nil
}

// ListPatterns returns learned patterns, most recently updated first.
func (s *SQLiteStorage) ListPatterns(ctx context.Context, limit int) ([]model.LearnedPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT`+learnedPatternColumns+`
		FROM learned_patterns
		ORDER BY updated_at DESC, title_hash
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list learned patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.LearnedPattern
	for rows.Next() {
		pattern, scanErr := scanLearnedPattern(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		patterns = append(patterns, *pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating learned patterns: %w", err)
	}

	return patterns, nil
}

// priceRange widens a single observed price into a tolerance band for
// future price-compatibility scoring. Zero price means no range.
func priceRange(price float64) (float64, float64) {
	if price <= 0 {
		return 0, 0
	}
	return price * 0.5, price * 1.5
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanLearnedPattern(sc scanner) (*model.LearnedPattern, error) {
	var pattern model.LearnedPattern
	var keywords, source string
	var createdAt, updatedAt sql.NullTime

	err := sc.Scan(
		&pattern.TitleHash,
		&pattern.TitlePattern,
		&keywords,
		&pattern.Brand,
		&pattern.SourceCategory,
		&pattern.PriceRangeMin,
		&pattern.PriceRangeMax,
		&pattern.CategoryID,
		&pattern.CategoryName,
		&pattern.ConfidenceScore,
		&pattern.UsageCount,
		&pattern.SuccessRate,
		&source,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan learned pattern: %w", err)
	}

	pattern.Keywords = splitKeywords(keywords)
	pattern.LearningSource = model.LearningSource(source)
	if createdAt.Valid {
		pattern.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		pattern.UpdatedAt = updatedAt.Time
	}

	return &pattern, nil
}

func (s *SQLiteStorage) touchSuccessRate(ctx context.Context, titleHash string, success bool) error {
	// Weighted running update: failures pull harder than successes push.
	delta := 2.0
	if !success {
		delta = -10.0
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE learned_patterns
		SET success_rate = MAX(0, MIN(100, success_rate + ?)),
			updated_at = CURRENT_TIMESTAMP
		WHERE title_hash = ?
	`, delta, titleHash)
	if err != nil {
		return fmt.Errorf("failed to update success rate: %w", err)
	}
	return nil
}

// RecordOutcome adjusts a pattern's success rate after downstream
// confirmation of a resolution.
func (s *SQLiteStorage) RecordOutcome(ctx context.Context, titleHash string, success bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(titleHash, "titleHash"); err != nil {
		return err
	}
	return s.touchSuccessRate(ctx, titleHash, success)
}
