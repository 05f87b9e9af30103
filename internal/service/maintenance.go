package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/lifeops/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI and TUI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes all user data. It keeps the schema intact and re-seeds the
// default domains so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"tasks",
			"recommendations",
			"plans",
			"bills",
			"medicines",
			"notes",
			"study_sessions",
			"progress_records",
			"weekly_progress",
			"domains",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if err := database.SeedDefaults(ctx, s.DB); err != nil {
		return fmt.Errorf("reseed domains: %w", err)
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
