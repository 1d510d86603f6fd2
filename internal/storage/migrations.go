package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Learned and unknown pattern tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS learned_patterns (
					title_hash TEXT PRIMARY KEY,
					title_pattern TEXT NOT NULL,
					keywords TEXT NOT NULL DEFAULT '',
					brand TEXT NOT NULL DEFAULT '',
					source_category TEXT NOT NULL DEFAULT '',
					price_range_min REAL NOT NULL DEFAULT 0,
					price_range_max REAL NOT NULL DEFAULT 0,
					category_id TEXT NOT NULL,
					category_name TEXT NOT NULL,
					confidence_score INTEGER NOT NULL DEFAULT 0,
					usage_count INTEGER NOT NULL DEFAULT 0,
					success_rate REAL NOT NULL DEFAULT 100,
					learning_source TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_learned_patterns_brand ON learned_patterns(brand)`,
				`CREATE INDEX idx_learned_patterns_category ON learned_patterns(category_id)`,

				`CREATE TABLE IF NOT EXISTS unknown_patterns (
					title_hash TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					brand TEXT NOT NULL DEFAULT '',
					source_category TEXT NOT NULL DEFAULT '',
					price REAL NOT NULL DEFAULT 0,
					occurrence_count INTEGER NOT NULL DEFAULT 1,
					priority_score REAL NOT NULL DEFAULT 0,
					needs_learning BOOLEAN NOT NULL DEFAULT 1,
					first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
					last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_unknown_patterns_priority ON unknown_patterns(needs_learning, priority_score)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Daily budget counter for the external suggestion service",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS call_budget (
					day TEXT PRIMARY KEY,
					call_count INTEGER NOT NULL DEFAULT 0
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Correction audit trail",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS correction_audit (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					brand TEXT NOT NULL DEFAULT '',
					source_category TEXT NOT NULL DEFAULT '',
					price REAL NOT NULL DEFAULT 0,
					category_id TEXT NOT NULL,
					category_name TEXT NOT NULL,
					success BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_correction_audit_created_at ON correction_audit(created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Index learned patterns by creation date for daily stats",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_learned_patterns_created_at ON learned_patterns(created_at)`)
			return err
		},
	},
}

// Migrate applies any outstanding schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
