package agents

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/jask/lifeops/internal/llm"
	"github.com/jask/lifeops/internal/planner"
)

const actionFormat = `End with a numbered list of concrete action items, one per line.
Give each a duration in minutes ("25 min") and a start time (HH:MM) when it matters.
Mark anything time-critical as "urgent" and nice-to-haves as "optional".`

const healthTemplate = `You are the Health & Wellness agent.
Analyse the user's health situation with medicine awareness.

User context:
- Stress level: {{.StressLevel}}/10
- Sleep hours: {{num .SleepHours}}
- Exercise frequency: {{or .ExerciseFrequency "Not specified"}}
- Medicines: {{or .Medicines "None"}}
- Problem: {{or .Problem "No specific problem mentioned"}}

Cover: risk assessment, immediate stress reduction, sleep, exercise given current
energy, nutrition for stress, medicine adherence if applicable.
`

const financeTemplate = `You are the Finance agent.
Analyse the user's financial situation with bill management.

User context:
- Monthly budget: ${{num .MonthlyBudget}}
- Current expenses: ${{num .CurrentExpenses}}
- Financial goals: {{or .FinancialGoals "Not specified"}}
- Bills: {{or .Bills "None"}}
- Problem: {{or .Problem "No specific problem mentioned"}}

Cover: budget allocation with bill priorities, expense cuts, automated payments,
savings with a bill buffer, spending that supports health or study.
`

const studyTemplate = `You are the Study & Focus agent.
Analyse the user's study situation with focus techniques.

User context:
- Exam date: {{or .ExamDate "Not specified"}}
- Days until exam: {{.Days}}
- Current study hours: {{num .CurrentStudyHours}}/day
- Subjects: {{or .Subjects "Not specified"}}
- Focus level: {{.FocusLevel}}/10
- Problem: {{or .Problem "No specific problem mentioned"}}

Cover: an adaptive Pomodoro schedule, focus techniques, burnout prevention,
progress tracking. Suggested daily load until the exam: {{.Load}}.
`

const coordinationTemplate = `You are the Life Commander.
Validate the three domain analyses below against each other, resolve conflicts
between them and produce one integrated plan for the day.

User's primary problem: {{or .Problem "General life optimization"}}
{{- if .Focus}}
Focus domain: {{.Focus}}
{{- end}}

HEALTH ANALYSIS:
{{.Health}}

FINANCE ANALYSIS:
{{.Finance}}

STUDY ANALYSIS:
{{.Study}}

Explain cross-domain trade-offs in full sentences (use "because" / "therefore").
Only list items that are new or combine domains; do not repeat domain items.
`

const reflectionTemplate = `You are the Weekly Reflection agent.
Analyse the user's week and give data-driven insights.

Weekly data:
` + "```json\n{{.}}\n```" + `

Cover: patterns in completed tasks, the consistency streak, health/finance/study
balance, three improvements for next week, and one achievement to celebrate.
`

const classifyTemplate = `Classify the task into exactly one domain:
health, finance, study, personal or general. Answer with the single word.

- Text: {{.}}
`

var funcs = template.FuncMap{
	"num": func(f float64) string {
		if f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
		return fmt.Sprintf("%.1f", f)
	},
}

var (
	healthTmpl       = template.Must(template.New("health").Funcs(funcs).Parse(healthTemplate))
	financeTmpl      = template.Must(template.New("finance").Funcs(funcs).Parse(financeTemplate))
	studyTmpl        = template.Must(template.New("study").Funcs(funcs).Parse(studyTemplate))
	coordinationTmpl = template.Must(template.New("coordination").Funcs(funcs).Parse(coordinationTemplate))
	reflectionTmpl   = template.Must(template.New("reflection").Parse(reflectionTemplate))
	classifyTmpl     = template.Must(template.New("classify").Parse(classifyTemplate))
)

func render(role llm.Role, t *template.Template, data interface{}, withActions bool) (string, error) {
	var sb strings.Builder
	sb.WriteString(llm.Header(role))
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", role, err)
	}
	if withActions {
		sb.WriteString("\n" + actionFormat + "\n")
	}
	return sb.String(), nil
}

func HealthPrompt(u UserContext) (string, error) {
	return render(llm.RoleHealth, healthTmpl, u, true)
}

func FinancePrompt(u UserContext) (string, error) {
	return render(llm.RoleFinance, financeTmpl, u, true)
}

// StudyPrompt includes the tapered study load up to the exam.
func StudyPrompt(u UserContext, now time.Time) (string, error) {
	data := struct {
		UserContext
		Days string
		Load string
	}{UserContext: u, Days: "Not specified", Load: "not available"}
	if days, ok := u.DaysUntilExam(now); ok {
		data.Days = fmt.Sprintf("%d", days)
		data.Load = studyLoad(days, u.CurrentStudyHours, now)
	}
	return render(llm.RoleStudy, studyTmpl, data, true)
}

func studyLoad(days int, hours float64, now time.Time) string {
	if hours <= 0 {
		hours = 3
	}
	var parts []string
	for _, d := range planner.StudyLoad(days, hours, now) {
		parts = append(parts, fmt.Sprintf("%s %.1fh", d.Date.Format("Jan 02"), d.Hours))
	}
	return strings.Join(parts, ", ")
}

// CoordinationPrompt asks the commander to reconcile the domain outputs.
func CoordinationPrompt(u UserContext, health, finance, study string) (string, error) {
	data := struct {
		Problem, Focus, Health, Finance, Study string
	}{
		Problem: u.Problem,
		Focus:   string(u.Focus()),
		Health:  orNone(health),
		Finance: orNone(finance),
		Study:   orNone(study),
	}
	return render(llm.RoleCoordination, coordinationTmpl, data, true)
}

// ReflectionPrompt embeds week as indented JSON.
func ReflectionPrompt(week interface{}) (string, error) {
	payload, err := json.MarshalIndent(week, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode week: %w", err)
	}
	return render(llm.RoleReflection, reflectionTmpl, string(payload), false)
}

func ClassifyPrompt(text string) (string, error) {
	return render(llm.RoleClassify, classifyTmpl, strings.TrimSpace(text), false)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(no output from this agent)"
	}
	return s
}
