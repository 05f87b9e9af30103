package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jask/lifeops/internal/agents"
	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/llm"
	"github.com/jask/lifeops/internal/planner"
)

// streakLookback bounds how far back completions are read for the streak.
const streakLookback = 366

// Reflection builds and stores the weekly progress report.
type Reflection struct {
	Provider       llm.Provider
	Tasks          *repository.TaskRepo
	Study          *repository.StudySessionRepo
	Progress       *repository.ProgressRepo
	WeeklyProgress *repository.WeeklyProgressRepo
	Log            *zap.Logger
	Now            func() time.Time
}

// DomainCount is the completion tally of one domain.
type DomainCount struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Score     int `json:"score"`
}

// StudyWeek summarises logged study sessions.
type StudyWeek struct {
	TotalMinutes    int     `json:"total_minutes"`
	AvgProductivity float64 `json:"avg_productivity"`
	Sessions        int     `json:"sessions"`
}

// ProgressPoint is a progress record as sent to the reflection agent.
type ProgressPoint struct {
	Date   string  `json:"date"`
	Domain string  `json:"domain"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// WeekData is everything the reflection agent sees about a week.
type WeekData struct {
	WeekStart string                 `json:"week_start"`
	Completed int                    `json:"completed"`
	Total     int                    `json:"total"`
	Domains   map[string]DomainCount `json:"domains"`
	Streak    int                    `json:"consistency_streak"`
	Study     StudyWeek              `json:"study"`
	Progress  []ProgressPoint        `json:"progress"`
}

// WeeklyReport is the result of a reflection run.
type WeeklyReport struct {
	Week       WeekData
	Reflection string
	// FromModel is false when the deterministic summary was used.
	FromModel bool
}

// Weekly reflects on the seven days starting at weekStart. A zero weekStart
// means the Monday of the current week.
func (r *Reflection) Weekly(ctx context.Context, weekStart time.Time) (WeeklyReport, error) {
	now := r.now()
	if weekStart.IsZero() {
		weekStart = MondayOf(now)
	}
	from := startOfDay(weekStart)
	to := from.AddDate(0, 0, 7)

	week := WeekData{
		WeekStart: from.Format("2006-01-02"),
		Domains:   map[string]DomainCount{},
		Progress:  []ProgressPoint{},
	}
	for _, d := range planner.Domains {
		week.Domains[string(d)] = DomainCount{}
	}

	tasks, err := r.Tasks.List(ctx, repository.TaskFilters{CreatedFrom: from, CreatedTo: to})
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("list week tasks: %w", err)
	}
	for _, t := range tasks {
		dc := week.Domains[t.Domain]
		dc.Total++
		week.Total++
		if t.Completed {
			dc.Completed++
			week.Completed++
		}
		week.Domains[t.Domain] = dc
	}
	for name, dc := range week.Domains {
		dc.Score = score(dc.Completed, dc.Total)
		week.Domains[name] = dc
	}

	completions, err := r.Tasks.CompletedSince(ctx, startOfDay(now).AddDate(0, 0, -streakLookback))
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("load completions: %w", err)
	}
	week.Streak = Streak(completions, now)

	if r.Study != nil {
		sum, err := r.Study.Summary(ctx, from)
		if err != nil {
			return WeeklyReport{}, fmt.Errorf("study summary: %w", err)
		}
		week.Study = StudyWeek{TotalMinutes: sum.TotalMinutes, AvgProductivity: sum.AvgScore, Sessions: sum.Sessions}
	}
	if r.Progress != nil {
		recs, err := r.Progress.List(ctx, from, to)
		if err != nil {
			return WeeklyReport{}, fmt.Errorf("list progress: %w", err)
		}
		for _, p := range recs {
			week.Progress = append(week.Progress, ProgressPoint{
				Date:   p.RecordedAt.In(from.Location()).Format("2006-01-02"),
				Domain: p.Domain,
				Metric: p.Metric,
				Value:  p.Value,
			})
		}
	}

	report := WeeklyReport{Week: week}
	report.Reflection, report.FromModel = r.reflect(ctx, week)
	if ctx.Err() != nil {
		return WeeklyReport{}, ctx.Err()
	}

	if r.WeeklyProgress != nil {
		err := r.WeeklyProgress.Upsert(ctx, repository.WeeklyProgress{
			WeekStart:         week.WeekStart,
			HealthScore:       week.Domains[string(planner.Health)].Score,
			FinanceScore:      week.Domains[string(planner.Finance)].Score,
			StudyScore:        week.Domains[string(planner.Study)].Score,
			ConsistencyStreak: week.Streak,
			Reflection:        report.Reflection,
			UpdatedAt:         now.UTC().Truncate(time.Second),
		})
		if err != nil {
			return WeeklyReport{}, fmt.Errorf("store weekly progress: %w", err)
		}
	}
	return report, nil
}

func (r *Reflection) reflect(ctx context.Context, week WeekData) (string, bool) {
	if r.Provider == nil {
		return WeeklySummary(week), false
	}
	prompt, err := agents.ReflectionPrompt(week)
	if err == nil {
		var text string
		text, err = r.Provider.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), true
		}
	}
	r.log().Warn("reflection agent failed, using summary", zap.Error(err))
	return WeeklySummary(week), false
}

func (r *Reflection) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Reflection) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// WeeklySummary is the deterministic reflection used without a model.
func WeeklySummary(w WeekData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week of %s: %d of %d tasks completed", w.WeekStart, w.Completed, w.Total)
	if w.Streak > 0 {
		fmt.Fprintf(&b, ", %d-day streak", w.Streak)
	}
	b.WriteString(".\n")
	for _, d := range planner.Domains {
		dc := w.Domains[string(d)]
		fmt.Fprintf(&b, "- %s: %d%% (%d/%d)\n", d, dc.Score, dc.Completed, dc.Total)
	}
	if w.Study.Sessions > 0 {
		fmt.Fprintf(&b, "- study time: %d min over %d sessions, productivity %.1f/10\n",
			w.Study.TotalMinutes, w.Study.Sessions, w.Study.AvgProductivity)
	}
	if weakest, ok := weakestDomain(w); ok {
		fmt.Fprintf(&b, "Next week: give %s one fixed daily slot.\n", weakest)
	}
	return b.String()
}

func weakestDomain(w WeekData) (planner.Domain, bool) {
	var (
		out  planner.Domain
		best = 101
	)
	for _, d := range planner.Domains {
		dc := w.Domains[string(d)]
		if dc.Total == 0 {
			continue
		}
		if dc.Score < best {
			out, best = d, dc.Score
		}
	}
	return out, out != ""
}

// Streak counts consecutive days with at least one completion, ending today,
// or yesterday when nothing has been completed yet today.
func Streak(completions []time.Time, now time.Time) int {
	days := make(map[string]bool, len(completions))
	for _, at := range completions {
		days[at.In(now.Location()).Format("2006-01-02")] = true
	}
	day := startOfDay(now)
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for days[day.Format("2006-01-02")] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// MondayOf returns local midnight of the Monday on or before t.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func score(completed, total int) int {
	if total == 0 {
		return 0
	}
	return completed * 100 / total
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
