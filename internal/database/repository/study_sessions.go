package repository

import (
	"context"
	"database/sql"
	"time"
)

// StudySessionRepo handles logged study blocks.
type StudySessionRepo struct{ db *sql.DB }

func NewStudySessionRepo(db *sql.DB) *StudySessionRepo { return &StudySessionRepo{db: db} }

func (r *StudySessionRepo) Insert(ctx context.Context, s StudySession) error {
	if s.ProductivityScore == 0 {
		s.ProductivityScore = 5
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO study_sessions(id, date, duration_minutes, subject, productivity_score, notes)
	VALUES(?, ?, ?, ?, ?, ?)`, s.ID, s.Date.UTC(), s.DurationMinutes, s.Subject, s.ProductivityScore, s.Notes)
	return err
}

// List returns the latest sessions first.
func (r *StudySessionRepo) List(ctx context.Context, limit int) ([]StudySession, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, date, duration_minutes, subject, productivity_score, notes FROM study_sessions ORDER BY date DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StudySession
	for rows.Next() {
		var s StudySession
		if err := rows.Scan(&s.ID, &s.Date, &s.DurationMinutes, &s.Subject, &s.ProductivityScore, &s.Notes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Summary aggregates sessions dated at or after since.
func (r *StudySessionRepo) Summary(ctx context.Context, since time.Time) (StudySummary, error) {
	var total sql.NullInt64
	var avg sql.NullFloat64
	var s StudySummary
	err := r.db.QueryRowContext(ctx, `
	SELECT SUM(duration_minutes), AVG(productivity_score), COUNT(*)
	FROM study_sessions WHERE date >= ?`, since.UTC()).Scan(&total, &avg, &s.Sessions)
	if err != nil {
		return StudySummary{}, err
	}
	s.TotalMinutes = int(total.Int64)
	s.AvgScore = avg.Float64
	return s, nil
}

func (r *StudySessionRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE id = ?`, id))
}
