package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Domain represents a life-area row.
type Domain struct {
	ID        string
	Name      string
	Label     string
	Color     string
	SortOrder int
}

// Task represents an action item, either user-entered or scheduled by a plan.
type Task struct {
	ID          string
	Domain      string
	Title       string
	Priority    int
	DueAt       *time.Time
	StartAt     *time.Time
	EndAt       *time.Time
	Source      string
	PlanID      *string
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Task sources.
const (
	SourceUser      = "user"
	SourceCommander = "commander"
)

// Recommendation is the raw text a domain agent produced during a run.
type Recommendation struct {
	ID        string
	RunID     string
	Domain    string
	Content   string
	CreatedAt time.Time
}

// Plan is a persisted synthesis result. The JSON columns carry the
// planner's conflict log, deferred items and validation report verbatim.
type Plan struct {
	ID             string
	Day            string
	GeneratedAt    time.Time
	Insights       string
	ConflictsJSON  string
	DeferredJSON   string
	ValidationJSON string
	Tasks          []Task
}

// Bill represents a recurring or one-off bill.
type Bill struct {
	ID            string
	Name          string
	AmountCents   int64
	DueDay        int
	Category      string
	Recurring     bool
	PaidThisMonth bool
	PaidAt        *time.Time
	CreatedAt     time.Time
}

// Medicine represents a medicine schedule entry.
type Medicine struct {
	ID              string
	Name            string
	Dosage          string
	Frequency       string
	TimeOfDay       string
	StartDate       time.Time
	EndDate         *time.Time
	ReminderEnabled bool
	LastTaken       *time.Time
}

// Note represents a free-form note.
type Note struct {
	ID        string
	Title     string
	Content   string
	Tags      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StudySession represents one logged study block.
type StudySession struct {
	ID                string
	Date              time.Time
	DurationMinutes   int
	Subject           string
	ProductivityScore int
	Notes             string
}

// StudySummary aggregates study sessions over a window.
type StudySummary struct {
	TotalMinutes int
	AvgScore     float64
	Sessions     int
}

// ProgressRecord is a single metric observation for a domain.
type ProgressRecord struct {
	ID         string
	Domain     string
	Metric     string
	Value      float64
	RecordedAt time.Time
	SourceHash *string
}

// WeeklyProgress is the stored outcome of a weekly reflection.
type WeeklyProgress struct {
	WeekStart         string
	HealthScore       int
	FinanceScore      int
	StudyScore        int
	ConsistencyStreak int
	Reflection        string
	UpdatedAt         time.Time
}
