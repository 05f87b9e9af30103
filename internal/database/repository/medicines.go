package repository

import (
	"context"
	"database/sql"
	"time"
)

// MedicineRepo handles the medicine vault.
type MedicineRepo struct{ db *sql.DB }

func NewMedicineRepo(db *sql.DB) *MedicineRepo { return &MedicineRepo{db: db} }

const medicineColumns = `id, name, dosage, frequency, time_of_day, start_date, end_date, reminder_enabled, last_taken`

func (r *MedicineRepo) Insert(ctx context.Context, m Medicine) error {
	if m.StartDate.IsZero() {
		m.StartDate = time.Now().UTC().Truncate(time.Second)
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO medicines(`+medicineColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Dosage, m.Frequency, m.TimeOfDay, m.StartDate.UTC(), m.EndDate, m.ReminderEnabled, m.LastTaken)
	return err
}

func (r *MedicineRepo) Get(ctx context.Context, id string) (Medicine, error) {
	m, err := scanMedicine(r.db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id))
	return m, notFound(err)
}

// List returns all medicines ordered by time of day.
func (r *MedicineRepo) List(ctx context.Context) ([]Medicine, error) {
	return r.list(ctx, `SELECT `+medicineColumns+` FROM medicines ORDER BY time_of_day, name`)
}

// ListActive returns medicines whose course has not ended before day.
func (r *MedicineRepo) ListActive(ctx context.Context, day time.Time) ([]Medicine, error) {
	return r.list(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE end_date IS NULL OR end_date >= ? ORDER BY time_of_day, name`, day.UTC())
}

func (r *MedicineRepo) Update(ctx context.Context, m Medicine) error {
	return affected(r.db.ExecContext(ctx, `
	UPDATE medicines SET name = ?, dosage = ?, frequency = ?, time_of_day = ?, end_date = ?, reminder_enabled = ?
	WHERE id = ?`, m.Name, m.Dosage, m.Frequency, m.TimeOfDay, m.EndDate, m.ReminderEnabled, m.ID))
}

func (r *MedicineRepo) MarkTaken(ctx context.Context, id string, at time.Time) error {
	return affected(r.db.ExecContext(ctx, `UPDATE medicines SET last_taken = ? WHERE id = ?`, at.UTC(), id))
}

func (r *MedicineRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id))
}

func (r *MedicineRepo) list(ctx context.Context, query string, args ...interface{}) ([]Medicine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMedicine(row scanner) (Medicine, error) {
	var m Medicine
	var end, last sql.NullTime
	if err := row.Scan(&m.ID, &m.Name, &m.Dosage, &m.Frequency, &m.TimeOfDay, &m.StartDate, &end,
		&m.ReminderEnabled, &last); err != nil {
		return Medicine{}, err
	}
	m.EndDate = timePtr(end)
	m.LastTaken = timePtr(last)
	return m, nil
}
