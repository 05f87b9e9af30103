package repository

import (
	"context"
	"database/sql"
	"time"
)

// NoteRepo handles smart notes.
type NoteRepo struct{ db *sql.DB }

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{db: db} }

func (r *NoteRepo) Insert(ctx context.Context, n Note) error {
	now := time.Now().UTC().Truncate(time.Second)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO notes(id, title, content, tags, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?)`, n.ID, n.Title, n.Content, n.Tags, n.CreatedAt, n.UpdatedAt)
	return err
}

func (r *NoteRepo) Get(ctx context.Context, id string) (Note, error) {
	var n Note
	err := r.db.QueryRowContext(ctx, `SELECT id, title, content, tags, created_at, updated_at FROM notes WHERE id = ?`, id).
		Scan(&n.ID, &n.Title, &n.Content, &n.Tags, &n.CreatedAt, &n.UpdatedAt)
	return n, notFound(err)
}

// List returns the most recently updated notes first.
func (r *NoteRepo) List(ctx context.Context, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, content, tags, created_at, updated_at FROM notes ORDER BY updated_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Tags, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NoteRepo) Update(ctx context.Context, n Note) error {
	return affected(r.db.ExecContext(ctx, `
	UPDATE notes SET title = ?, content = ?, tags = ?, updated_at = ? WHERE id = ?`,
		n.Title, n.Content, n.Tags, time.Now().UTC().Truncate(time.Second), n.ID))
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id))
}
