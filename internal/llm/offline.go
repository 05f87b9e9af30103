package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jask/lifeops/internal/planner"
)

// OfflineProvider is a deterministic heuristic implementation. It answers
// every known prompt role from the user context embedded in the prompt so the
// whole pipeline runs without network access.
type OfflineProvider struct{}

func NewOfflineProvider() *OfflineProvider { return &OfflineProvider{} }

func (p *OfflineProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	role, ok := DetectRole(prompt)
	if !ok {
		return "", fmt.Errorf("offline: unrecognised prompt: %w", ErrEmptyResponse)
	}
	switch role {
	case RoleHealth:
		return offlineHealth(prompt), nil
	case RoleFinance:
		return offlineFinance(prompt), nil
	case RoleStudy:
		return offlineStudy(prompt), nil
	case RoleCoordination:
		return offlineCoordination(), nil
	case RoleReflection:
		return offlineReflection(prompt), nil
	case RoleClassify:
		return string(planner.Classify(contextField(prompt, "Text"))), nil
	}
	return "", ErrEmptyResponse
}

func offlineHealth(prompt string) string {
	items := []string{
		"Practice 10-minute breathing exercises at 7:15",
		"Take a 30-minute walk at 17:30",
		"Prepare a balanced lunch with vegetables (20 min)",
		"Stay hydrated throughout the day",
	}
	if n, ok := leadingNumber(contextField(prompt, "Stress level")); ok && n >= 7 {
		items = append(items, "Important: screen-free wind down routine at 21:00 (15 min)")
	}
	if n, ok := leadingNumber(contextField(prompt, "Sleep hours")); ok && n < 7 {
		items = append(items, "Set a fixed lights-out reminder at 21:30 (5 min)")
	}
	if meds := contextField(prompt, "Medicines"); present(meds) {
		items = append(items, "Take "+meds+" with breakfast at 8:00 (5 min)")
	}
	return section("Health Analysis", items)
}

func offlineFinance(prompt string) string {
	items := []string{
		"Track all expenses for the next week",
		"Create budget categories: essentials 50%, savings 20%, leisure 30%",
		"Review subscriptions and cancel unused ones (20 min)",
		"Set up automatic savings transfer (15 min)",
	}
	budget, okB := leadingNumber(contextField(prompt, "Monthly budget"))
	spent, okS := leadingNumber(contextField(prompt, "Current expenses"))
	if okB && okS && spent > budget {
		items = append(items, "Urgent: cut discretionary spending to close the budget gap (30 min)")
	}
	if bills := contextField(prompt, "Bills"); present(bills) {
		items = append(items, "Schedule payment for "+bills+" before the due date (10 min)")
	}
	return section("Finance Analysis", items)
}

func offlineStudy(prompt string) string {
	items := []string{
		"Use Pomodoro technique: 25min study, 5min break",
		"Create study schedule with specific topics per day",
		"Review material within 24 hours of learning",
		"Practice active recall with flashcards (30 min)",
	}
	starts := []string{"9:00", "14:00", "19:00"}
	if subjects := contextField(prompt, "Subjects"); present(subjects) {
		for i, s := range strings.Split(subjects, ",") {
			if i == len(starts) {
				break
			}
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, fmt.Sprintf("Deep focus block on %s (50 min) at %s", s, starts[i]))
			}
		}
	}
	if n, ok := leadingNumber(contextField(prompt, "Days until exam")); ok && n > 0 && n <= 7 {
		items = append(items, "Urgent: full mock exam under timed conditions (1.5 hours)")
	}
	return section("Study Analysis", items)
}

func offlineCoordination() string {
	return "## Integrated Life Plan\n\n" +
		"Because stress, money and study time compete for the same hours, the plan front-loads focus work and protects sleep.\n\n" +
		"1. Morning routine: 15min meditation and daily planning at 7:00\n" +
		"2. Schedule study sessions after exercise for better focus\n" +
		"3. Weekly financial review on Sundays (30 min)\n" +
		"4. Sleep hygiene for better memory retention\n"
}

func offlineReflection(prompt string) string {
	var week struct {
		Completed int `json:"completed"`
		Total     int `json:"total"`
		Streak    int `json:"consistency_streak"`
	}
	_ = DecodeJSON(prompt, &week)
	var b strings.Builder
	b.WriteString("## Weekly Reflection\n\n")
	fmt.Fprintf(&b, "You completed %d of %d planned actions", week.Completed, week.Total)
	if week.Streak > 0 {
		fmt.Fprintf(&b, " and kept a %d-day streak", week.Streak)
	}
	b.WriteString(".\n\n")
	switch {
	case week.Total == 0:
		b.WriteString("1. Start next week with three small, scheduled actions.\n")
	case week.Completed*2 < week.Total:
		b.WriteString("1. Fewer, smaller tasks next week; finish before adding more.\n")
	default:
		b.WriteString("1. Keep the routine and raise one goal slightly.\n")
	}
	b.WriteString("2. Protect sleep before exam days.\n3. Review spending every Sunday.\n")
	return b.String()
}

func section(title string, items []string) string {
	var b strings.Builder
	b.WriteString("## " + title + "\n\n**Recommendations:**\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it)
	}
	return b.String()
}

// contextField returns the value of a "- Name: value" prompt line.
func contextField(prompt, name string) string {
	prefix := "- " + strings.ToLower(name) + ":"
	for _, line := range strings.Split(prompt, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), prefix) {
			return strings.TrimSpace(trimmed[len(prefix):])
		}
	}
	return ""
}

func present(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "not specified", "n/a":
		return false
	}
	return true
}

// leadingNumber parses "8", "8/10" or "1200.50".
func leadingNumber(v string) (float64, bool) {
	v = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "$"))
	end := 0
	for end < len(v) && (v[end] == '.' || v[end] == '-' || (v[end] >= '0' && v[end] <= '9')) {
		end++
	}
	n, err := strconv.ParseFloat(v[:end], 64)
	return n, err == nil
}
