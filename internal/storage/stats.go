package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hareba/catres/internal/service"
)

// Stats summarizes the learning store for operational dashboards.
func (s *SQLiteStorage) Stats(ctx context.Context) (*service.StoreStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	stats := &service.StoreStats{}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM learned_patterns`).Scan(&stats.LearnedPatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to count learned patterns: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM learned_patterns
		WHERE created_at >= datetime('now', 'start of day')
	`).Scan(&stats.LearnedToday)
	if err != nil {
		return nil, fmt.Errorf("failed to count patterns learned today: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM unknown_patterns WHERE needs_learning = 1`).Scan(&stats.UnknownBacklog)
	if err != nil {
		return nil, fmt.Errorf("failed to count unknown backlog: %w", err)
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT AVG(success_rate), COUNT(*)
		FROM learned_patterns
		WHERE usage_count >= 3
	`).Scan(&avg, &stats.PatternsWithUses)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to average success rate: %w", err)
	}
	if avg.Valid {
		stats.AvgSuccessRate = avg.Float64
	}

	return stats, nil
}
