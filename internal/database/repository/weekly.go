package repository

import (
	"context"
	"database/sql"
	"time"
)

// WeeklyProgressRepo handles weekly reflection rows keyed by week start (YYYY-MM-DD).
type WeeklyProgressRepo struct{ db *sql.DB }

func NewWeeklyProgressRepo(db *sql.DB) *WeeklyProgressRepo { return &WeeklyProgressRepo{db: db} }

func (r *WeeklyProgressRepo) Upsert(ctx context.Context, w WeeklyProgress) error {
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO weekly_progress(week_start, health_score, finance_score, study_score, consistency_streak, reflection, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(week_start) DO UPDATE SET
	 health_score=excluded.health_score,
	 finance_score=excluded.finance_score,
	 study_score=excluded.study_score,
	 consistency_streak=excluded.consistency_streak,
	 reflection=excluded.reflection,
	 updated_at=excluded.updated_at;
	`, w.WeekStart, w.HealthScore, w.FinanceScore, w.StudyScore, w.ConsistencyStreak, w.Reflection, w.UpdatedAt.UTC())
	return err
}

func (r *WeeklyProgressRepo) Get(ctx context.Context, weekStart string) (WeeklyProgress, error) {
	w, err := scanWeekly(r.db.QueryRowContext(ctx, `SELECT week_start, health_score, finance_score, study_score, consistency_streak, reflection, updated_at FROM weekly_progress WHERE week_start = ?`, weekStart))
	return w, notFound(err)
}

func (r *WeeklyProgressRepo) List(ctx context.Context, limit int) ([]WeeklyProgress, error) {
	if limit <= 0 {
		limit = 8
	}
	rows, err := r.db.QueryContext(ctx, `SELECT week_start, health_score, finance_score, study_score, consistency_streak, reflection, updated_at FROM weekly_progress ORDER BY week_start DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WeeklyProgress
	for rows.Next() {
		w, err := scanWeekly(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWeekly(row scanner) (WeeklyProgress, error) {
	var w WeeklyProgress
	err := row.Scan(&w.WeekStart, &w.HealthScore, &w.FinanceScore, &w.StudyScore, &w.ConsistencyStreak, &w.Reflection, &w.UpdatedAt)
	return w, err
}
