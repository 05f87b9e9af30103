package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jask/lifeops/internal/database/repository"
)

// ReminderKind labels a reminder.
type ReminderKind string

const (
	ReminderBill     ReminderKind = "bill"
	ReminderMedicine ReminderKind = "medicine"
)

// Reminder is one thing the user should act on soon.
type Reminder struct {
	Kind   ReminderKind
	ID     string
	Title  string
	Due    time.Time
	Detail string
}

// Reminders lists bills coming due and medicines not yet taken today.
type Reminders struct {
	Bills     *repository.BillRepo
	Medicines *repository.MedicineRepo
	Now       func() time.Time
}

// Due returns unpaid bills due within the next days (0 means today only)
// followed by today's outstanding medicines.
func (r *Reminders) Due(ctx context.Context, days int) ([]Reminder, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	today := startOfDay(now)
	var out []Reminder

	if r.Bills != nil {
		bills, err := r.Bills.List(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("list bills: %w", err)
		}
		limit := today.AddDate(0, 0, days)
		for _, b := range bills {
			due := NextDue(b.DueDay, today, b.PaidThisMonth)
			if due.After(limit) {
				continue
			}
			out = append(out, Reminder{
				Kind:   ReminderBill,
				ID:     b.ID,
				Title:  b.Name,
				Due:    due,
				Detail: fmt.Sprintf("$%.2f %s, due %s", float64(b.AmountCents)/100, b.Category, dueIn(due, today)),
			})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	}

	if r.Medicines != nil {
		meds, err := r.Medicines.ListActive(ctx, today)
		if err != nil {
			return nil, fmt.Errorf("list medicines: %w", err)
		}
		for _, m := range meds {
			if !m.ReminderEnabled {
				continue
			}
			if m.LastTaken != nil && !m.LastTaken.In(today.Location()).Before(today) {
				continue
			}
			detail := m.Dosage
			if m.TimeOfDay != "" {
				detail = fmt.Sprintf("%s at %s", m.Dosage, m.TimeOfDay)
			}
			out = append(out, Reminder{Kind: ReminderMedicine, ID: m.ID, Title: m.Name, Due: today, Detail: detail})
		}
	}
	return out, nil
}

// NextDue returns the due date of a bill due on dueDay each month. Unpaid
// bills use this month's date, which may be in the past; paid bills move to
// the following month. Days past the end of a month clamp to its last day.
func NextDue(dueDay int, today time.Time, paidThisMonth bool) time.Time {
	if !paidThisMonth {
		return dueInMonth(today.Year(), today.Month(), dueDay, today.Location())
	}
	return dueInMonth(today.Year(), today.Month()+1, dueDay, today.Location())
}

func dueInMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func dueIn(due, today time.Time) string {
	days := int(due.Sub(today).Hours()/24 + 0.5)
	if due.Before(today) {
		days = -int(today.Sub(due).Hours()/24 + 0.5)
	}
	switch {
	case days < 0:
		return fmt.Sprintf("%s (overdue %dd)", due.Format("Jan 2"), -days)
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	}
	return fmt.Sprintf("%s (in %dd)", due.Format("Jan 2"), days)
}
