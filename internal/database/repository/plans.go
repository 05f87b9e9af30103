package repository

import (
	"context"
	"database/sql"
)

// PlanRepo handles synthesized plans and the tasks they schedule.
type PlanRepo struct{ db *sql.DB }

func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{db: db} }

// Save stores the plan row and every task in p.Tasks in one transaction.
// Tasks get their PlanID set to p.ID.
func (r *PlanRepo) Save(ctx context.Context, p Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO plans(id, day, generated_at, insights, conflicts_json, deferred_json, validation_json)
	VALUES(?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Day, p.GeneratedAt.UTC(), p.Insights, orDefault(p.ConflictsJSON, "[]"),
		orDefault(p.DeferredJSON, "[]"), orDefault(p.ValidationJSON, "{}")); err != nil {
		_ = tx.Rollback()
		return err
	}
	planID := p.ID
	for _, t := range p.Tasks {
		t.PlanID = &planID
		if err := insertTask(ctx, tx, t); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *PlanRepo) Get(ctx context.Context, id string) (Plan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, day, generated_at, insights, conflicts_json, deferred_json, validation_json FROM plans WHERE id = ?`, id)
	return r.withTasks(ctx, row)
}

// Latest returns the most recently generated plan.
func (r *PlanRepo) Latest(ctx context.Context) (Plan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, day, generated_at, insights, conflicts_json, deferred_json, validation_json FROM plans ORDER BY generated_at DESC, id DESC LIMIT 1`)
	return r.withTasks(ctx, row)
}

// List returns plans newest first without their tasks.
func (r *PlanRepo) List(ctx context.Context, limit int) ([]Plan, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, day, generated_at, insights, conflicts_json, deferred_json, validation_json FROM plans ORDER BY generated_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the plan; its tasks stay in the task list with plan_id cleared.
func (r *PlanRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id))
}

func (r *PlanRepo) withTasks(ctx context.Context, row *sql.Row) (Plan, error) {
	p, err := scanPlan(row)
	if err != nil {
		return Plan{}, notFound(err)
	}
	tasks, err := listTasks(ctx, r.db, TaskFilters{PlanID: p.ID})
	if err != nil {
		return Plan{}, err
	}
	p.Tasks = tasks
	return p, nil
}

func scanPlan(row scanner) (Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.Day, &p.GeneratedAt, &p.Insights, &p.ConflictsJSON, &p.DeferredJSON, &p.ValidationJSON)
	return p, err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
