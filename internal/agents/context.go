// Package agents renders the domain agent prompts from the user's context.
package agents

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jask/lifeops/internal/planner"
)

// UserContext is everything the agents know about the user for one run.
type UserContext struct {
	Problem           string  `yaml:"problem" json:"problem"`
	StressLevel       int     `yaml:"stress_level" json:"stress_level"`
	SleepHours        float64 `yaml:"sleep_hours" json:"sleep_hours"`
	ExerciseFrequency string  `yaml:"exercise_frequency" json:"exercise_frequency"`
	Medicines         string  `yaml:"medicines" json:"medicines"`
	MonthlyBudget     float64 `yaml:"monthly_budget" json:"monthly_budget"`
	CurrentExpenses   float64 `yaml:"current_expenses" json:"current_expenses"`
	FinancialGoals    string  `yaml:"financial_goals" json:"financial_goals"`
	Bills             string  `yaml:"bills" json:"bills"`
	// ExamDate is YYYY-MM-DD; empty when no exam is coming up.
	ExamDate          string  `yaml:"exam_date" json:"exam_date"`
	CurrentStudyHours float64 `yaml:"current_study_hours" json:"current_study_hours"`
	Subjects          string  `yaml:"subjects" json:"subjects"`
	FocusLevel        int     `yaml:"focus_level" json:"focus_level"`
	FocusDomain       string  `yaml:"focus_domain" json:"focus_domain"`
}

// DefaultUserContext mirrors the dashboard's initial settings.
func DefaultUserContext(now time.Time) UserContext {
	return UserContext{
		Problem:           "I'm stressed about my upcoming exam but also need to manage my budget and health",
		StressLevel:       5,
		SleepHours:        7,
		ExerciseFrequency: "1-2 times/week",
		MonthlyBudget:     2000,
		CurrentExpenses:   1500,
		FinancialGoals:    "Save for emergency fund, reduce unnecessary expenses",
		ExamDate:          now.AddDate(0, 0, 30).Format("2006-01-02"),
		CurrentStudyHours: 3,
		FocusLevel:        5,
	}
}

// LoadUserContext reads a YAML (or JSON) context file over the defaults.
func LoadUserContext(path string, now time.Time) (UserContext, error) {
	uc := DefaultUserContext(now)
	data, err := os.ReadFile(path)
	if err != nil {
		return UserContext{}, fmt.Errorf("read context: %w", err)
	}
	if err := yaml.Unmarshal(data, &uc); err != nil {
		return UserContext{}, fmt.Errorf("parse context: %w", err)
	}
	if err := uc.Validate(); err != nil {
		return UserContext{}, err
	}
	return uc, nil
}

// Validate checks ranges and formats.
func (u UserContext) Validate() error {
	if u.StressLevel < 0 || u.StressLevel > 10 {
		return fmt.Errorf("stress_level %d out of range 1-10", u.StressLevel)
	}
	if u.FocusLevel < 0 || u.FocusLevel > 10 {
		return fmt.Errorf("focus_level %d out of range 1-10", u.FocusLevel)
	}
	if u.SleepHours < 0 || u.SleepHours > 24 {
		return fmt.Errorf("sleep_hours %.1f out of range", u.SleepHours)
	}
	if u.ExamDate != "" {
		if _, err := time.Parse("2006-01-02", u.ExamDate); err != nil {
			return fmt.Errorf("exam_date %q: want YYYY-MM-DD", u.ExamDate)
		}
	}
	if u.FocusDomain != "" {
		if _, ok := planner.ParseDomain(u.FocusDomain); !ok {
			return fmt.Errorf("focus_domain %q: %w", u.FocusDomain, planner.ErrInvalidDomain)
		}
	}
	return nil
}

// DaysUntilExam counts calendar days from now to the exam date.
func (u UserContext) DaysUntilExam(now time.Time) (int, bool) {
	if strings.TrimSpace(u.ExamDate) == "" {
		return 0, false
	}
	exam, err := time.ParseInLocation("2006-01-02", u.ExamDate, now.Location())
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(math.Round(exam.Sub(today).Hours() / 24)), true
}

// Focus returns the focus domain, or "" when none is set.
func (u UserContext) Focus() planner.Domain {
	d, _ := planner.ParseDomain(u.FocusDomain)
	return d
}
