package agents

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/lifeops/internal/llm"
	"github.com/jask/lifeops/internal/planner"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestLoadUserContextOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
problem: Too much on my plate
stress_level: 8
medicines: Vitamin D
exam_date: "2026-03-07"
subjects: Maths, Physics
focus_domain: Study
`), 0o600))

	uc, err := LoadUserContext(path, now)
	require.NoError(t, err)
	require.Equal(t, "Too much on my plate", uc.Problem)
	require.Equal(t, 8, uc.StressLevel)
	require.InDelta(t, 2000, uc.MonthlyBudget, 0.001)
	require.Equal(t, planner.Study, uc.Focus())

	days, ok := uc.DaysUntilExam(now)
	require.True(t, ok)
	require.Equal(t, 5, days)
}

func TestLoadUserContextRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"stress.yaml": "stress_level: 14\n",
		"exam.yaml":   "exam_date: next week\n",
		"focus.yaml":  "focus_domain: astrology\n",
		"broken.yaml": "stress_level: [\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := LoadUserContext(path, now)
		require.Error(t, err, name)
	}
	_, err := LoadUserContext(filepath.Join(dir, "missing.yaml"), now)
	require.Error(t, err)
}

func TestDefaultContextExamInThirtyDays(t *testing.T) {
	days, ok := DefaultUserContext(now).DaysUntilExam(now)
	require.True(t, ok)
	require.Equal(t, 30, days)

	_, ok = UserContext{}.DaysUntilExam(now)
	require.False(t, ok)
}

func TestDomainPromptsCarryRoleAndContext(t *testing.T) {
	uc := DefaultUserContext(now)
	uc.StressLevel = 8
	uc.Medicines = "Vitamin D"
	uc.Bills = "Rent"

	health, err := HealthPrompt(uc)
	require.NoError(t, err)
	role, ok := llm.DetectRole(health)
	require.True(t, ok)
	require.Equal(t, llm.RoleHealth, role)
	require.Contains(t, health, "- Stress level: 8/10")
	require.Contains(t, health, "- Sleep hours: 7")
	require.Contains(t, health, "- Medicines: Vitamin D")
	require.Contains(t, health, "numbered list of concrete action items")

	finance, err := FinancePrompt(uc)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(finance, llm.Header(llm.RoleFinance)))
	require.Contains(t, finance, "- Monthly budget: $2000")
	require.Contains(t, finance, "- Bills: Rent")

	study, err := StudyPrompt(uc, now)
	require.NoError(t, err)
	require.Contains(t, study, "- Days until exam: 30")
	require.Contains(t, study, "Mar 02 3.0h")
	require.Contains(t, study, "Mar 31 2.0h")
}

func TestStudyPromptWithoutExam(t *testing.T) {
	study, err := StudyPrompt(UserContext{}, now)
	require.NoError(t, err)
	require.Contains(t, study, "- Days until exam: Not specified")
	require.Contains(t, study, "- Subjects: Not specified")
}

func TestCoordinationPrompt(t *testing.T) {
	uc := UserContext{Problem: "exam stress", FocusDomain: "health"}
	p, err := CoordinationPrompt(uc, "1. Walk daily", "", "1. Review notes")
	require.NoError(t, err)
	role, _ := llm.DetectRole(p)
	require.Equal(t, llm.RoleCoordination, role)
	require.Contains(t, p, "User's primary problem: exam stress\nFocus domain: health\n")
	require.Contains(t, p, "FINANCE ANALYSIS:\n(no output from this agent)")
	require.Contains(t, p, "STUDY ANALYSIS:\n1. Review notes")
}

func TestReflectionAndClassifyPrompts(t *testing.T) {
	p, err := ReflectionPrompt(map[string]int{"completed": 3, "total": 4})
	require.NoError(t, err)
	var week map[string]int
	require.NoError(t, llm.DecodeJSON(p, &week))
	require.Equal(t, 3, week["completed"])

	c, err := ClassifyPrompt("  buy groceries ")
	require.NoError(t, err)
	require.Contains(t, c, "- Text: buy groceries\n")
}
