package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CallCount returns the number of external calls recorded for the given
// day key. Days without a row have a count of zero.
func (s *SQLiteStorage) CallCount(ctx context.Context, day string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(day, "day"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT call_count FROM call_budget WHERE day = ?`, day).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get call count: %w", err)
	}

	return count, nil
}

// TryAcquireCall atomically consumes one call from the day's budget. It
// returns false when the cap has been reached. The compare-and-increment
// happens inside a single UPDATE so concurrent resolutions cannot push
// the counter past the cap.
func (s *SQLiteStorage) TryAcquireCall(ctx context.Context, day string, maxCalls int) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(day, "day"); err != nil {
		return false, err
	}
	if maxCalls <= 0 {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO call_budget (day, call_count) VALUES (?, 0)
		ON CONFLICT(day) DO NOTHING
	`, day); err != nil {
		return false, fmt.Errorf("failed to ensure budget row: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE call_budget
		SET call_count = call_count + 1
		WHERE day = ? AND call_count < ?
	`, day, maxCalls)
	if err != nil {
		return false, fmt.Errorf("failed to acquire call budget: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ReleaseCall returns one previously acquired call to the day's budget,
// used when a round-trip fails and should not count against the cap.
func (s *SQLiteStorage) ReleaseCall(ctx context.Context, day string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(day, "day"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE call_budget
		SET call_count = CASE WHEN call_count > 0 THEN call_count - 1 ELSE 0 END
		WHERE day = ?
	`, day)
	if err != nil {
		return fmt.Errorf("failed to release call budget: %w", err)
	}

	return nil
}
