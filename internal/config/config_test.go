package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LIFEOPS_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "lifeops", "lifeops.db"), cfg.Database.Path)
	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, "GOOGLE_API_KEY", cfg.LLM.APIKeyEnv)
	require.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	require.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	require.Equal(t, "07:00", cfg.Planner.DayStart)
	require.Equal(t, 10*time.Minute, cfg.Planner.Buffer)
	require.Equal(t, 3, cfg.Planner.Weights["health"])
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverridesDatabasePath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LIFEOPS_CONFIG", "")
	t.Setenv("LIFEOPS_DATABASE_PATH", "/tmp/lifeops-env.db")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/lifeops-env.db", cfg.Database.Path)
}

func TestSaveThenLoadRoundTripsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	t.Setenv("HOME", dir)
	t.Setenv("LIFEOPS_CONFIG", path)

	cfg := Config{
		Database: DatabaseConfig{Path: filepath.Join(dir, "x.db")},
		LLM:      LLMConfig{Provider: "offline", APIKeyEnv: "MY_KEY", Model: "m", Temperature: 0.2, Timeout: 5 * time.Second},
		Planner: PlannerConfig{
			DayStart: "06:30", DayEnd: "21:00", Buffer: 5 * time.Minute, HorizonDays: 2,
			MaxPerDomain: 4, DedupeThreshold: 0.3, Timezone: "UTC",
			Weights: map[string]int{"study": 9},
		},
		Log: LogConfig{Level: "debug"},
	}
	require.NoError(t, Save(cfg))
	_, err := os.Stat(path)
	require.NoError(t, err)

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "offline", got.LLM.Provider)
	require.Equal(t, "06:30", got.Planner.DayStart)
	require.Equal(t, 2, got.Planner.HorizonDays)
	require.Equal(t, 5*time.Minute, got.Planner.Buffer)
	require.Equal(t, 9, got.Planner.Weights["study"])
	require.Equal(t, "debug", got.Log.Level)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Setenv("LIFEOPS_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
	_, err := Load()
	require.Error(t, err)
}

func TestClockOffset(t *testing.T) {
	d, err := ClockOffset("07:30")
	require.NoError(t, err)
	require.Equal(t, 7*time.Hour+30*time.Minute, d)

	d, err = ClockOffset("24:00")
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, d)

	_, err = ClockOffset("7pm")
	require.Error(t, err)
}

func TestLocationFallsBackToLocal(t *testing.T) {
	require.Equal(t, time.Local, PlannerConfig{Timezone: "Not/AZone"}.Location())
	require.Equal(t, time.UTC, PlannerConfig{Timezone: "UTC"}.Location())
}
