package repository

import (
	"context"
	"database/sql"
)

// RecommendationRepo handles raw agent outputs.
type RecommendationRepo struct{ db *sql.DB }

func NewRecommendationRepo(db *sql.DB) *RecommendationRepo { return &RecommendationRepo{db: db} }

func (r *RecommendationRepo) Insert(ctx context.Context, rec Recommendation) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO recommendations(id, run_id, domain, content, created_at)
	VALUES(?, ?, ?, ?, ?)`, rec.ID, rec.RunID, rec.Domain, rec.Content, rec.CreatedAt.UTC())
	return err
}

func (r *RecommendationRepo) Get(ctx context.Context, id string) (Recommendation, error) {
	var rec Recommendation
	err := r.db.QueryRowContext(ctx, `SELECT id, run_id, domain, content, created_at FROM recommendations WHERE id = ?`, id).
		Scan(&rec.ID, &rec.RunID, &rec.Domain, &rec.Content, &rec.CreatedAt)
	return rec, notFound(err)
}

func (r *RecommendationRepo) ListByRun(ctx context.Context, runID string) ([]Recommendation, error) {
	return r.list(ctx, `SELECT id, run_id, domain, content, created_at FROM recommendations WHERE run_id = ? ORDER BY created_at, domain`, runID)
}

func (r *RecommendationRepo) ListRecent(ctx context.Context, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.list(ctx, `SELECT id, run_id, domain, content, created_at FROM recommendations ORDER BY created_at DESC, domain LIMIT ?`, limit)
}

func (r *RecommendationRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM recommendations WHERE id = ?`, id))
}

func (r *RecommendationRepo) list(ctx context.Context, query string, args ...interface{}) ([]Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Recommendation
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Domain, &rec.Content, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
