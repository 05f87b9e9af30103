package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/lifeops/internal/database"
	"github.com/jask/lifeops/internal/database/repository"
)

func setupDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	db, err := database.Setup(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ctx
}

func ptr[T any](v T) *T { return &v }

func TestTaskCRUD(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewTaskRepo(db)

	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	task := repository.Task{
		ID:        uuid.NewString(),
		Domain:    "study",
		Title:     "Review chapter three with flashcards",
		Priority:  3,
		DueAt:     ptr(created.Add(48 * time.Hour)),
		CreatedAt: created,
	}
	require.NoError(t, repo.Insert(ctx, task))

	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, task.Title, got.Title)
	require.Equal(t, repository.SourceUser, got.Source)
	require.NotNil(t, got.DueAt)
	require.True(t, task.DueAt.Equal(*got.DueAt))
	require.Nil(t, got.PlanID)
	require.False(t, got.Completed)

	got.Title = "Review chapter four"
	got.Priority = 4
	require.NoError(t, repo.Update(ctx, got))

	doneAt := created.Add(time.Hour)
	require.NoError(t, repo.MarkComplete(ctx, task.ID, doneAt))
	got, err = repo.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "Review chapter four", got.Title)
	require.Equal(t, 4, got.Priority)
	require.True(t, got.Completed)
	require.True(t, doneAt.Equal(*got.CompletedAt))

	pending, err := repo.List(ctx, repository.TaskFilters{PendingOnly: true})
	require.NoError(t, err)
	require.Empty(t, pending)

	times, err := repo.CompletedSince(ctx, created)
	require.NoError(t, err)
	require.Len(t, times, 1)

	require.NoError(t, repo.MarkPending(ctx, task.ID))
	pending, err = repo.List(ctx, repository.TaskFilters{PendingOnly: true, Domain: "study"})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.Delete(ctx, task.ID))
	_, err = repo.Get(ctx, task.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, task.ID), repository.ErrNotFound)
}

func TestTaskListCreatedWindow(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewTaskRepo(db)
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Insert(ctx, repository.Task{
			ID: uuid.NewString(), Domain: "health", Title: "Walk for thirty minutes", Priority: 2,
			CreatedAt: base.AddDate(0, 0, i),
		}))
	}
	list, err := repo.List(ctx, repository.TaskFilters{CreatedFrom: base, CreatedTo: base.AddDate(0, 0, 7)})
	require.NoError(t, err)
	require.Len(t, list, 7)
	require.True(t, list[0].CreatedAt.After(list[6].CreatedAt))
}

func TestPlanSaveAndLatest(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	plans := repository.NewPlanRepo(db)
	tasks := repository.NewTaskRepo(db)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mk := func(title string, h int) repository.Task {
		return repository.Task{
			ID: uuid.NewString(), Domain: "health", Title: title, Priority: 2,
			StartAt: ptr(day.Add(time.Duration(h) * time.Hour)),
			EndAt:   ptr(day.Add(time.Duration(h)*time.Hour + 30*time.Minute)),
			Source:  repository.SourceCommander,
		}
	}
	older := repository.Plan{ID: uuid.NewString(), Day: "2026-03-01", GeneratedAt: day.Add(-time.Hour)}
	require.NoError(t, plans.Save(ctx, older))

	p := repository.Plan{
		ID:          uuid.NewString(),
		Day:         "2026-03-02",
		GeneratedAt: day,
		Insights:    "Stress from study affects sleep.",
		Tasks:       []repository.Task{mk("Evening stretch routine", 20), mk("Morning meditation session", 7)},
	}
	require.NoError(t, plans.Save(ctx, p))

	latest, err := plans.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, p.ID, latest.ID)
	require.Equal(t, "[]", latest.ConflictsJSON)
	require.Equal(t, "{}", latest.ValidationJSON)
	require.Len(t, latest.Tasks, 2)
	require.Equal(t, "Morning meditation session", latest.Tasks[0].Title)
	require.Equal(t, p.ID, *latest.Tasks[0].PlanID)

	list, err := plans.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, plans.Delete(ctx, p.ID))
	remaining, err := tasks.List(ctx, repository.TaskFilters{})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, task := range remaining {
		require.Nil(t, task.PlanID)
	}
	_, err = plans.Get(ctx, p.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBillLifecycle(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewBillRepo(db)

	rent := repository.Bill{ID: uuid.NewString(), Name: "Rent", AmountCents: 120000, DueDay: 1, Recurring: true}
	gym := repository.Bill{ID: uuid.NewString(), Name: "Gym", AmountCents: 4500, DueDay: 15, Category: "Health", Recurring: false}
	require.NoError(t, repo.Insert(ctx, gym))
	require.NoError(t, repo.Insert(ctx, rent))

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Rent", all[0].Name)
	require.Equal(t, "Utilities", all[0].Category)

	recurring, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, recurring, 1)

	paidAt := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkPaid(ctx, rent.ID, paidAt))
	n, err := repo.ResetPaidBefore(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := repo.Get(ctx, rent.ID)
	require.NoError(t, err)
	require.False(t, got.PaidThisMonth)

	bad := repository.Bill{ID: uuid.NewString(), Name: "Broken", DueDay: 40}
	require.Error(t, repo.Insert(ctx, bad))

	require.NoError(t, repo.Delete(ctx, gym.ID))
	require.ErrorIs(t, repo.Delete(ctx, gym.ID), repository.ErrNotFound)
}

func TestMedicineActiveAndTaken(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewMedicineRepo(db)
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	active := repository.Medicine{ID: uuid.NewString(), Name: "Vitamin D", Dosage: "1000IU", Frequency: "daily", TimeOfDay: "08:00", StartDate: today.AddDate(0, 0, -10), ReminderEnabled: true}
	ended := repository.Medicine{ID: uuid.NewString(), Name: "Antibiotic", Dosage: "500mg", Frequency: "twice daily", TimeOfDay: "09:00", StartDate: today.AddDate(0, 0, -10), EndDate: ptr(today.AddDate(0, 0, -1))}
	require.NoError(t, repo.Insert(ctx, active))
	require.NoError(t, repo.Insert(ctx, ended))

	list, err := repo.ListActive(ctx, today)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Vitamin D", list[0].Name)

	require.NoError(t, repo.MarkTaken(ctx, active.ID, today.Add(8*time.Hour)))
	got, err := repo.Get(ctx, active.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastTaken)

	got.Dosage = "2000IU"
	require.NoError(t, repo.Update(ctx, got))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "2000IU", all[0].Dosage)
}

func TestNotesOrderedByUpdate(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewNoteRepo(db)
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	a := repository.Note{ID: uuid.NewString(), Title: "a", Content: "first", CreatedAt: base}
	b := repository.Note{ID: uuid.NewString(), Title: "b", Content: "second", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, b))

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "b", list[0].Title)

	a.Content = "edited"
	require.NoError(t, repo.Update(ctx, a))
	list, err = repo.List(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "a", list[0].Title)
	require.Equal(t, "edited", list[0].Content)

	require.ErrorIs(t, repo.Update(ctx, repository.Note{ID: "missing"}), repository.ErrNotFound)
}

func TestStudySummary(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewStudySessionRepo(db)
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	empty, err := repo.Summary(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Equal(t, repository.StudySummary{}, empty)

	require.NoError(t, repo.Insert(ctx, repository.StudySession{ID: uuid.NewString(), Date: now.AddDate(0, 0, -1), DurationMinutes: 50, Subject: "Maths", ProductivityScore: 8}))
	require.NoError(t, repo.Insert(ctx, repository.StudySession{ID: uuid.NewString(), Date: now.AddDate(0, 0, -2), DurationMinutes: 25, Subject: "Physics", ProductivityScore: 6}))
	require.NoError(t, repo.Insert(ctx, repository.StudySession{ID: uuid.NewString(), Date: now.AddDate(0, 0, -20), DurationMinutes: 90, Subject: "Old"}))

	sum, err := repo.Summary(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Equal(t, 75, sum.TotalMinutes)
	require.Equal(t, 2, sum.Sessions)
	require.InDelta(t, 7.0, sum.AvgScore, 0.001)

	recent, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "Maths", recent[0].Subject)
}

func TestProgressDuplicateHash(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewProgressRepo(db)
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	hash := "abc"

	first := repository.ProgressRecord{ID: uuid.NewString(), Domain: "health", Metric: "sleep_hours", Value: 7.5, RecordedAt: at, SourceHash: &hash}
	require.NoError(t, repo.Insert(ctx, first))
	dup := first
	dup.ID = uuid.NewString()
	require.ErrorIs(t, repo.Insert(ctx, dup), repository.ErrDuplicate)

	// records without a hash never collide
	require.NoError(t, repo.Insert(ctx, repository.ProgressRecord{ID: uuid.NewString(), Domain: "study", Metric: "hours", Value: 2, RecordedAt: at.Add(time.Hour)}))
	require.NoError(t, repo.Insert(ctx, repository.ProgressRecord{ID: uuid.NewString(), Domain: "study", Metric: "hours", Value: 3, RecordedAt: at.Add(2 * time.Hour)}))

	list, err := repo.List(ctx, at, at.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 2)

	first.Value = 8
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	require.InDelta(t, 8.0, got.Value, 0.001)
	require.Equal(t, "abc", *got.SourceHash)
}

func TestWeeklyUpsert(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewWeeklyProgressRepo(db)

	require.NoError(t, repo.Upsert(ctx, repository.WeeklyProgress{WeekStart: "2026-03-02", HealthScore: 40}))
	require.NoError(t, repo.Upsert(ctx, repository.WeeklyProgress{WeekStart: "2026-03-02", HealthScore: 80, Reflection: "better"}))

	got, err := repo.Get(ctx, "2026-03-02")
	require.NoError(t, err)
	require.Equal(t, 80, got.HealthScore)
	require.Equal(t, "better", got.Reflection)

	_, err = repo.Get(ctx, "1999-01-04")
	require.ErrorIs(t, err, repository.ErrNotFound)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRecommendationsByRun(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	repo := repository.NewRecommendationRepo(db)
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, d := range []string{"study", "health", "finance"} {
		require.NoError(t, repo.Insert(ctx, repository.Recommendation{ID: uuid.NewString(), RunID: "run-1", Domain: d, Content: d + " advice", CreatedAt: at}))
	}
	require.NoError(t, repo.Insert(ctx, repository.Recommendation{ID: uuid.NewString(), RunID: "run-2", Domain: "health", Content: "x", CreatedAt: at.Add(time.Hour)}))

	run, err := repo.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, run, 3)
	require.Equal(t, "finance", run[0].Domain)

	recent, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "run-2", recent[0].RunID)
}
