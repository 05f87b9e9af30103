package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicate is returned when a progress record with the same source hash exists.
var ErrDuplicate = errors.New("duplicate record")

// ProgressRepo handles progress records.
type ProgressRepo struct{ db *sql.DB }

func NewProgressRepo(db *sql.DB) *ProgressRepo { return &ProgressRepo{db: db} }

func (r *ProgressRepo) Insert(ctx context.Context, p ProgressRecord) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO progress_records(id, domain, metric, value, recorded_at, source_hash)
	VALUES(?, ?, ?, ?, ?, ?)`, p.ID, p.Domain, p.Metric, p.Value, p.RecordedAt.UTC(), p.SourceHash)
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return err
}

func (r *ProgressRepo) Get(ctx context.Context, id string) (ProgressRecord, error) {
	p, err := scanProgress(r.db.QueryRowContext(ctx, `SELECT id, domain, metric, value, recorded_at, source_hash FROM progress_records WHERE id = ?`, id))
	return p, notFound(err)
}

// List returns records with from <= recorded_at < to, oldest first. Zero bounds are open.
func (r *ProgressRepo) List(ctx context.Context, from, to time.Time) ([]ProgressRecord, error) {
	query := `SELECT id, domain, metric, value, recorded_at, source_hash FROM progress_records WHERE 1=1`
	var args []interface{}
	if !from.IsZero() {
		query += ` AND recorded_at >= ?`
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += ` AND recorded_at < ?`
		args = append(args, to.UTC())
	}
	query += ` ORDER BY recorded_at, domain, metric`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProgressRecord
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProgressRepo) Update(ctx context.Context, p ProgressRecord) error {
	return affected(r.db.ExecContext(ctx, `
	UPDATE progress_records SET domain = ?, metric = ?, value = ?, recorded_at = ? WHERE id = ?`,
		p.Domain, p.Metric, p.Value, p.RecordedAt.UTC(), p.ID))
}

func (r *ProgressRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM progress_records WHERE id = ?`, id))
}

func scanProgress(row scanner) (ProgressRecord, error) {
	var p ProgressRecord
	var hash sql.NullString
	if err := row.Scan(&p.ID, &p.Domain, &p.Metric, &p.Value, &p.RecordedAt, &hash); err != nil {
		return ProgressRecord{}, err
	}
	p.SourceHash = strPtr(hash)
	return p, nil
}
