package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hareba/catres/internal/model"
)

// AppendAudit records a manual correction. Audit rows are append-only.
func (s *SQLiteStorage) AppendAudit(ctx context.Context, entry model.CorrectionAudit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(entry.ID, "id"); err != nil {
		return err
	}
	if err := validateQuery(entry.Query); err != nil {
		return err
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO correction_audit (
			id, title, description, brand, source_category, price,
			category_id, category_name, success, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Query.Title, entry.Query.Description, entry.Query.Brand,
		entry.Query.SourceCategory, entry.Query.Price,
		entry.CategoryID, entry.CategoryName, entry.Success, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// ListAuditEntries returns correction audit rows, newest first.
func (s *SQLiteStorage) ListAuditEntries(ctx context.Context, limit int) ([]model.CorrectionAudit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, brand, source_category, price,
			category_id, category_name, success, created_at
		FROM correction_audit
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.CorrectionAudit
	for rows.Next() {
		var e model.CorrectionAudit
		if err := rows.Scan(
			&e.ID, &e.Query.Title, &e.Query.Description, &e.Query.Brand,
			&e.Query.SourceCategory, &e.Query.Price,
			&e.CategoryID, &e.CategoryName, &e.Success, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
