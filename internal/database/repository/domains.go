package repository

import (
	"context"
	"database/sql"
)

// DomainRepo handles domains.
type DomainRepo struct {
	db *sql.DB
}

func NewDomainRepo(db *sql.DB) *DomainRepo {
	return &DomainRepo{db: db}
}

func (r *DomainRepo) Upsert(ctx context.Context, d Domain) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO domains(id, name, label, color, sort_order)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 label=excluded.label,
	 color=excluded.color,
	 sort_order=excluded.sort_order;
	`, d.ID, d.Name, d.Label, d.Color, d.SortOrder)
	return err
}

func (r *DomainRepo) List(ctx context.Context) ([]Domain, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, label, color, sort_order FROM domains ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Domain
	for rows.Next() {
		var d Domain
		if err := rows.Scan(&d.ID, &d.Name, &d.Label, &d.Color, &d.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DomainRepo) GetByName(ctx context.Context, name string) (Domain, error) {
	var d Domain
	err := r.db.QueryRowContext(ctx, `SELECT id, name, label, color, sort_order FROM domains WHERE name = ?`, name).
		Scan(&d.ID, &d.Name, &d.Label, &d.Color, &d.SortOrder)
	return d, notFound(err)
}
