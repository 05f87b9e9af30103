package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jask/lifeops/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Tasks     *repository.TaskRepo
	Bills     *repository.BillRepo
	Medicines *repository.MedicineRepo
	Notes     *repository.NoteRepo
	Study     *repository.StudySessionRepo
	Progress  *repository.ProgressRepo
}

// Seed creates two weeks of sample data ending at now. The same seed
// produces the same data.
func Seed(ctx context.Context, repos Repos, now time.Time, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	now = now.UTC().Truncate(time.Second)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	bills := []repository.Bill{
		{Name: "Rent", AmountCents: 120000, DueDay: 1, Category: "Housing", Recurring: true},
		{Name: "Electricity", AmountCents: 8500, DueDay: 15, Category: "Utilities", Recurring: true},
		{Name: "Phone", AmountCents: 4500, DueDay: 22, Category: "Utilities", Recurring: true},
		{Name: "Streaming", AmountCents: 1599, DueDay: 28, Category: "Subscriptions", Recurring: true},
	}
	for _, b := range bills {
		b.ID = uuid.NewString()
		if err := repos.Bills.Insert(ctx, b); err != nil {
			return fmt.Errorf("seed bill %s: %w", b.Name, err)
		}
	}

	meds := []repository.Medicine{
		{Name: "Vitamin D", Dosage: "1000 IU", Frequency: "daily", TimeOfDay: "08:00"},
		{Name: "Magnesium", Dosage: "200 mg", Frequency: "daily", TimeOfDay: "21:00"},
	}
	for _, m := range meds {
		m.ID = uuid.NewString()
		m.StartDate = today.AddDate(0, 0, -30)
		m.ReminderEnabled = true
		if err := repos.Medicines.Insert(ctx, m); err != nil {
			return fmt.Errorf("seed medicine %s: %w", m.Name, err)
		}
	}

	titles := map[string][]string{
		"health":  {"Morning walk", "Stretching routine", "Meal prep for the week", "Breathing exercises"},
		"finance": {"Review subscriptions", "Log this week's expenses", "Transfer to savings"},
		"study":   {"Maths revision block", "Flashcards for physics", "Past paper practice", "Summarise lecture notes"},
	}
	subjects := []string{"Maths", "Physics", "Chemistry"}
	for day := 13; day >= 0; day-- {
		date := today.AddDate(0, 0, -day)
		for _, domain := range []string{"health", "finance", "study"} {
			list := titles[domain]
			created := date.Add(7 * time.Hour)
			t := repository.Task{
				ID:        uuid.NewString(),
				Domain:    domain,
				Title:     list[rng.Intn(len(list))],
				Priority:  1 + rng.Intn(4),
				CreatedAt: created,
			}
			if day > 0 && rng.Intn(10) < 7 {
				done := date.Add(time.Duration(9+rng.Intn(10)) * time.Hour)
				t.Completed, t.CompletedAt = true, &done
			}
			if err := repos.Tasks.Insert(ctx, t); err != nil {
				return fmt.Errorf("seed task: %w", err)
			}
		}
		if rng.Intn(3) > 0 {
			s := repository.StudySession{
				ID:                uuid.NewString(),
				Date:              date.Add(14 * time.Hour),
				DurationMinutes:   25 * (1 + rng.Intn(4)),
				Subject:           subjects[rng.Intn(len(subjects))],
				ProductivityScore: 4 + rng.Intn(7),
			}
			if err := repos.Study.Insert(ctx, s); err != nil {
				return fmt.Errorf("seed study session: %w", err)
			}
		}
		sleep := 5.5 + float64(rng.Intn(7))*0.5
		if err := repos.Progress.Insert(ctx, repository.ProgressRecord{
			ID:         uuid.NewString(),
			Domain:     "health",
			Metric:     "sleep_hours",
			Value:      sleep,
			RecordedAt: date.Add(6 * time.Hour),
		}); err != nil {
			return fmt.Errorf("seed progress: %w", err)
		}
	}

	note := repository.Note{
		ID:        uuid.NewString(),
		Title:     "Exam prep",
		Content:   "Focus on integration by parts and kinematics.",
		Tags:      "study,exam",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repos.Notes.Insert(ctx, note); err != nil {
		return fmt.Errorf("seed note: %w", err)
	}
	return nil
}
