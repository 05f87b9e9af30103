package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// TaskFilters defines list filters.
type TaskFilters struct {
	Domain      string
	PlanID      string
	PendingOnly bool
	CreatedFrom time.Time // zero = no lower bound
	CreatedTo   time.Time // zero = no upper bound, exclusive
}

// TaskRepo handles tasks (action items).
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

const taskColumns = `id, domain, title, priority, due_at, start_at, end_at, source, plan_id, completed, completed_at, created_at`

func (r *TaskRepo) Insert(ctx context.Context, t Task) error {
	return insertTask(ctx, r.db, t)
}

func insertTask(ctx context.Context, q dbtx, t Task) error {
	if t.Source == "" {
		t.Source = SourceUser
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := q.ExecContext(ctx, `
	INSERT INTO tasks(`+taskColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		t.ID, t.Domain, t.Title, t.Priority, t.DueAt, t.StartAt, t.EndAt, t.Source, t.PlanID,
		t.Completed, t.CompletedAt, t.CreatedAt)
	return err
}

func (r *TaskRepo) Get(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	return t, notFound(err)
}

func (r *TaskRepo) List(ctx context.Context, f TaskFilters) ([]Task, error) {
	return listTasks(ctx, r.db, f)
}

func listTasks(ctx context.Context, q dbtx, f TaskFilters) ([]Task, error) {
	var where []string
	var args []interface{}

	if f.Domain != "" {
		where = append(where, "domain = ?")
		args = append(args, f.Domain)
	}
	if f.PlanID != "" {
		where = append(where, "plan_id = ?")
		args = append(args, f.PlanID)
	}
	if f.PendingOnly {
		where = append(where, "completed = 0")
	}
	if !f.CreatedFrom.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.CreatedFrom.UTC())
	}
	if !f.CreatedTo.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, f.CreatedTo.UTC())
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.PlanID != "" {
		query += " ORDER BY start_at ASC, id ASC"
	} else {
		query += " ORDER BY created_at DESC, id ASC"
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a task.
func (r *TaskRepo) Update(ctx context.Context, t Task) error {
	return affected(r.db.ExecContext(ctx, `
	UPDATE tasks SET domain = ?, title = ?, priority = ?, due_at = ?, start_at = ?, end_at = ?
	WHERE id = ?`, t.Domain, t.Title, t.Priority, t.DueAt, t.StartAt, t.EndAt, t.ID))
}

func (r *TaskRepo) MarkComplete(ctx context.Context, id string, at time.Time) error {
	return affected(r.db.ExecContext(ctx, `UPDATE tasks SET completed = 1, completed_at = ? WHERE id = ?`, at.UTC(), id))
}

func (r *TaskRepo) MarkPending(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE tasks SET completed = 0, completed_at = NULL WHERE id = ?`, id))
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id))
}

// CompletedSince returns completion times of tasks completed at or after since, newest first.
func (r *TaskRepo) CompletedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT completed_at FROM tasks WHERE completed = 1 AND completed_at >= ? ORDER BY completed_at DESC`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var at sql.NullTime
		if err := rows.Scan(&at); err != nil {
			return nil, err
		}
		if at.Valid {
			out = append(out, at.Time)
		}
	}
	return out, rows.Err()
}

func scanTask(row scanner) (Task, error) {
	var t Task
	var due, start, end, completedAt sql.NullTime
	var planID sql.NullString
	if err := row.Scan(&t.ID, &t.Domain, &t.Title, &t.Priority, &due, &start, &end, &t.Source,
		&planID, &t.Completed, &completedAt, &t.CreatedAt); err != nil {
		return Task{}, err
	}
	t.DueAt = timePtr(due)
	t.StartAt = timePtr(start)
	t.EndAt = timePtr(end)
	t.PlanID = strPtr(planID)
	t.CompletedAt = timePtr(completedAt)
	return t, nil
}
