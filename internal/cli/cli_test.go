package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

// setupTestEnv points HOME, the config dir and the database at a temp dir.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("LIFEOPS_CONFIG", "")
	t.Setenv("LIFEOPS_DATABASE_PATH", filepath.Join(home, "data", "lifeops.db"))
	t.Setenv("LIFEOPS_LOG_LEVEL", "error")
	t.Setenv("LIFEOPS_PLANNER_TIMEZONE", "UTC")
	t.Setenv("GOOGLE_API_KEY", "")
	return home
}

// execute runs the root command with fresh flag values and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "", "--help")
	require.NoError(t, err)
	require.Contains(t, out, "lifeops")
	require.Contains(t, out, "Planning:")
	require.Contains(t, out, "Tracking:")
	require.Contains(t, out, "plan")
	require.Contains(t, out, "remind")
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "1.2.3\n", out)
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, err := execute(t, "", "invalid-command")
	require.Error(t, err)
}

func TestPlanWithoutKeyExplainsOffline(t *testing.T) {
	setupTestEnv(t)
	_, err := execute(t, "", "plan")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--offline")
}

func TestPlanOfflinePersistsAndShows(t *testing.T) {
	setupTestEnv(t)

	out, err := execute(t, "", "plan", "--offline", "--day", "2026-03-02")
	require.NoError(t, err, out)
	require.Contains(t, out, "Plan for 2026-03-02")
	require.Contains(t, out, "validated")
	require.NotContains(t, out, "plan not saved")

	out, err = execute(t, "", "plan", "show")
	require.NoError(t, err)
	require.Contains(t, out, "Plan for 2026-03-02")

	out, err = execute(t, "", "--json", "plan", "history")
	require.NoError(t, err)
	var history []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history, 1)
	require.Equal(t, "2026-03-02", history[0]["day"])

	out, err = execute(t, "", "--json", "task", "list", "--plan", fmt.Sprint(history[0]["id"])[:8])
	require.NoError(t, err)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.NotEmpty(t, tasks)
	for _, task := range tasks {
		require.Equal(t, "commander", task["source"])
	}
}

func TestPlanContextIsRemembered(t *testing.T) {
	home := setupTestEnv(t)
	ctxFile := filepath.Join(home, "context.yaml")
	require.NoError(t, os.WriteFile(ctxFile, []byte("stress_level: 8\nfocus_domain: study\n"), 0o600))

	out, err := execute(t, "", "--json", "plan", "--offline", "--context", ctxFile)
	require.NoError(t, err, out)
	var view planView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.True(t, view.Saved)
	require.True(t, view.Validation.OK)

	data, err := os.ReadFile(filepath.Join(home, ".config", "lifeops", "profile.yaml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "stress_level: 8")
	require.Contains(t, string(data), "focus_domain: study")
}

func TestShowWithoutPlan(t *testing.T) {
	setupTestEnv(t)
	out, err := execute(t, "", "plan", "show")
	require.NoError(t, err)
	require.Contains(t, out, "No plan yet")
}

func TestTaskLifecycle(t *testing.T) {
	setupTestEnv(t)

	out, err := execute(t, "", "task", "add", "Pay", "electricity", "bill", "--offline", "--priority", "high")
	require.NoError(t, err)
	require.Contains(t, out, `Added finance task "Pay electricity bill"`)

	out, err = execute(t, "", "--json", "task", "list")
	require.NoError(t, err)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, "high", tasks[0]["priority"])
	id := tasks[0]["id"].(string)

	out, err = execute(t, "", "task", "done", id[:8])
	require.NoError(t, err)
	require.Contains(t, out, "Completed Pay electricity bill")

	out, err = execute(t, "", "--json", "task", "list", "--pending")
	require.NoError(t, err)
	require.Equal(t, "[]\n", out)

	_, err = execute(t, "", "task", "rm", id[:8])
	require.NoError(t, err)
	_, err = execute(t, "", "task", "rm", id[:8])
	require.Error(t, err)
}

func TestTaskAddRejectsUnknownDomain(t *testing.T) {
	setupTestEnv(t)
	_, err := execute(t, "", "task", "add", "walk", "--domain", "hobby")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid domain")
}

func TestBillsAndReminders(t *testing.T) {
	setupTestEnv(t)
	today := time.Now().UTC()

	_, err := execute(t, "", "bill", "add", "Rent", "--amount", "$1,200", "--due-day", fmt.Sprint(today.Day()), "--category", "Housing")
	require.NoError(t, err)
	_, err = execute(t, "", "med", "add", "Vitamin D", "--dosage", "1000 IU", "--time", "08:00")
	require.NoError(t, err)

	out, err := execute(t, "", "remind", "--days", "0")
	require.NoError(t, err)
	require.Contains(t, out, "Rent")
	require.Contains(t, out, "$1200.00 Housing, due today")
	require.Contains(t, out, "Vitamin D")

	out, err = execute(t, "", "--json", "bill", "list")
	require.NoError(t, err)
	var bills []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &bills))
	require.Len(t, bills, 1)
	billID := bills[0]["id"].(string)

	out, err = execute(t, "", "--json", "med", "list")
	require.NoError(t, err)
	var meds []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &meds))
	require.Len(t, meds, 1)
	medID := meds[0]["id"].(string)

	_, err = execute(t, "", "bill", "paid", billID[:8])
	require.NoError(t, err)
	_, err = execute(t, "", "med", "taken", medID[:8])
	require.NoError(t, err)

	out, err = execute(t, "", "remind", "--days", "0")
	require.NoError(t, err)
	require.Contains(t, out, "Nothing due")
}

func TestBillAddValidates(t *testing.T) {
	setupTestEnv(t)
	_, err := execute(t, "", "bill", "add", "Gym", "--amount", "abc")
	require.Error(t, err)
	_, err = execute(t, "", "bill", "add", "Gym", "--amount", "30", "--due-day", "32")
	require.Error(t, err)
	_, err = execute(t, "", "med", "add", "Iron", "--time", "25:99")
	require.Error(t, err)
}

func TestProgressImportAndReflect(t *testing.T) {
	home := setupTestEnv(t)
	csvPath := filepath.Join(home, "progress.csv")
	csv := "date,domain,metric,value\n# comment\n2026-03-02,health,sleep_hours,7.5\n2026-03-03,study,hours,2\n2026-03-03,hobby,x,1\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o600))

	out, err := execute(t, "", "progress", "import", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 2, skipped 0 duplicate(s)")
	require.Contains(t, out, "hobby")

	out, err = execute(t, "", "progress", "import", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 0, skipped 2 duplicate(s)")

	_, err = execute(t, "", "study", "log", "50", "Maths", "--score", "8")
	require.NoError(t, err)
	out, err = execute(t, "", "--json", "study", "summary")
	require.NoError(t, err)
	var sum map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.EqualValues(t, 50, sum["totalMinutes"])

	out, err = execute(t, "", "reflect", "--offline")
	require.NoError(t, err)
	require.Contains(t, out, "Week of")

	out, err = execute(t, "", "reflect", "history")
	require.NoError(t, err)
	require.Contains(t, out, "WEEK")
}

func TestNotes(t *testing.T) {
	setupTestEnv(t)
	_, err := execute(t, "", "note", "add", "Exam", "prep", "--content", "Past papers first", "--tags", "#Study, exam,study")
	require.NoError(t, err)
	out, err := execute(t, "", "note", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Exam prep")
	require.Contains(t, out, "Past papers first")
	require.Contains(t, out, "#study #exam")
}

func TestResetNeedsConfirmation(t *testing.T) {
	setupTestEnv(t)
	_, err := execute(t, "", "seed")
	require.NoError(t, err)

	_, err = execute(t, "n\n", "reset")
	require.Error(t, err)
	out, err := execute(t, "", "--json", "bill", "list")
	require.NoError(t, err)
	require.NotEqual(t, "[]\n", out)

	out, err = execute(t, "", "reset", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "All data cleared")
	out, err = execute(t, "", "--json", "bill", "list")
	require.NoError(t, err)
	require.Equal(t, "[]\n", out)
}

func TestKeyCommands(t *testing.T) {
	setupTestEnv(t)
	out, err := execute(t, "abcd1234efgh5678\n", "key", "set", "Gemini")
	require.NoError(t, err)
	require.Contains(t, out, "Saved key for gemini")

	out, err = execute(t, "", "key", "status", "gemini")
	require.NoError(t, err)
	require.Contains(t, out, "abcd••••••••5678")

	out, err = execute(t, "", "key", "status")
	require.NoError(t, err)
	require.Contains(t, out, "PROVIDER")
	require.Contains(t, out, "gemini")
	require.NotContains(t, out, "abcd")

	_, err = execute(t, "", "key", "rm", "gemini")
	require.NoError(t, err)
	_, err = execute(t, "", "key", "rm", "gemini")
	require.Error(t, err)

	out, err = execute(t, "", "key", "status")
	require.NoError(t, err)
	require.Contains(t, out, "No keys saved")
}

func TestConfigInit(t *testing.T) {
	home := setupTestEnv(t)
	_, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, ".config", "lifeops", "config.toml"))
	require.NoError(t, err)
	_, err = execute(t, "", "config", "init")
	require.Error(t, err)
}

func TestResolveID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz"}
	id, err := resolveID("abc", ids)
	require.NoError(t, err)
	require.Equal(t, "abc123", id)
	id, err = resolveID("xyz", ids)
	require.NoError(t, err)
	require.Equal(t, "xyz", id)
	_, err = resolveID("ab", ids)
	require.ErrorContains(t, err, "ambiguous")
	_, err = resolveID("q", ids)
	require.Error(t, err)
}

func TestParseCents(t *testing.T) {
	for in, want := range map[string]int64{"84.5": 8450, "$1,200": 120000, "0.015": 2, "19.99": 1999} {
		got, err := parseCents(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "-3", "ten"} {
		_, err := parseCents(in)
		require.Error(t, err, in)
	}
}
