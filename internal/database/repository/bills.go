package repository

import (
	"context"
	"database/sql"
	"time"
)

// BillRepo handles bills.
type BillRepo struct{ db *sql.DB }

func NewBillRepo(db *sql.DB) *BillRepo { return &BillRepo{db: db} }

const billColumns = `id, name, amount_cents, due_day, category, recurring, paid_this_month, paid_at, created_at`

func (r *BillRepo) Insert(ctx context.Context, b Bill) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if b.Category == "" {
		b.Category = "Utilities"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO bills(`+billColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.AmountCents, b.DueDay, b.Category, b.Recurring, b.PaidThisMonth, b.PaidAt, b.CreatedAt)
	return err
}

func (r *BillRepo) Get(ctx context.Context, id string) (Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id))
	return b, notFound(err)
}

// List returns bills ordered by due day. recurringOnly mirrors the monthly bill calendar.
func (r *BillRepo) List(ctx context.Context, recurringOnly bool) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills`
	if recurringOnly {
		query += ` WHERE recurring = 1`
	}
	query += ` ORDER BY due_day, name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BillRepo) Update(ctx context.Context, b Bill) error {
	return affected(r.db.ExecContext(ctx, `
	UPDATE bills SET name = ?, amount_cents = ?, due_day = ?, category = ?, recurring = ?
	WHERE id = ?`, b.Name, b.AmountCents, b.DueDay, b.Category, b.Recurring, b.ID))
}

func (r *BillRepo) MarkPaid(ctx context.Context, id string, at time.Time) error {
	return affected(r.db.ExecContext(ctx, `UPDATE bills SET paid_this_month = 1, paid_at = ? WHERE id = ?`, at.UTC(), id))
}

// ResetPaidBefore clears the paid flag of bills paid before the given month start.
func (r *BillRepo) ResetPaidBefore(ctx context.Context, monthStart time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE bills SET paid_this_month = 0 WHERE paid_this_month = 1 AND (paid_at IS NULL OR paid_at < ?)`, monthStart.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *BillRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id))
}

func scanBill(row scanner) (Bill, error) {
	var b Bill
	var paidAt sql.NullTime
	if err := row.Scan(&b.ID, &b.Name, &b.AmountCents, &b.DueDay, &b.Category, &b.Recurring,
		&b.PaidThisMonth, &paidAt, &b.CreatedAt); err != nil {
		return Bill{}, err
	}
	b.PaidAt = timePtr(paidAt)
	return b, nil
}
