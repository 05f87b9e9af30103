package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig holds provider settings.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKeyEnv   string        `mapstructure:"api_key_env"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PlannerConfig holds the scheduling window and conflict policy knobs.
type PlannerConfig struct {
	DayStart        string         `mapstructure:"day_start"`
	DayEnd          string         `mapstructure:"day_end"`
	Buffer          time.Duration  `mapstructure:"buffer"`
	HorizonDays     int            `mapstructure:"horizon_days"`
	MaxPerDomain    int            `mapstructure:"max_per_domain"`
	DedupeThreshold float64        `mapstructure:"dedupe_threshold"`
	Timezone        string         `mapstructure:"timezone"`
	Weights         map[string]int `mapstructure:"weights"`
}

// LogConfig holds zap settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from file and env. Env var overrides use prefix LIFEOPS_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "lifeops", "lifeops.db"))
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key_env", "GOOGLE_API_KEY")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", "45s")
	v.SetDefault("planner.day_start", "07:00")
	v.SetDefault("planner.day_end", "22:00")
	v.SetDefault("planner.buffer", "10m")
	v.SetDefault("planner.horizon_days", 1)
	v.SetDefault("planner.max_per_domain", 10)
	v.SetDefault("planner.dedupe_threshold", 0.25)
	v.SetDefault("planner.timezone", "Local")
	v.SetDefault("planner.weights", map[string]int{"health": 3, "finance": 2, "study": 2, "personal": 1})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("LIFEOPS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "lifeops"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LIFEOPS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present; an explicit path must exist
	if err := v.ReadInConfig(); err != nil && cfgPath != "" {
		return Config{}, fmt.Errorf("read config %s: %w", cfgPath, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The API key is stored in plain text in the config file; prefer env vars or `lifeops key set`.
func Save(cfg Config) error {
	path := os.Getenv("LIFEOPS_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "lifeops", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.Set("llm.api_key", cfg.LLM.APIKey)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("llm.temperature", cfg.LLM.Temperature)
	v.Set("llm.timeout", cfg.LLM.Timeout.String())
	v.Set("planner.day_start", cfg.Planner.DayStart)
	v.Set("planner.day_end", cfg.Planner.DayEnd)
	v.Set("planner.buffer", cfg.Planner.Buffer.String())
	v.Set("planner.horizon_days", cfg.Planner.HorizonDays)
	v.Set("planner.max_per_domain", cfg.Planner.MaxPerDomain)
	v.Set("planner.dedupe_threshold", cfg.Planner.DedupeThreshold)
	v.Set("planner.timezone", cfg.Planner.Timezone)
	v.Set("planner.weights", cfg.Planner.Weights)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.development", cfg.Log.Development)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Location resolves the planner timezone, falling back to time.Local.
func (p PlannerConfig) Location() *time.Location {
	name := strings.TrimSpace(p.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// ClockOffset parses an "HH:MM" wall-clock value into an offset from midnight.
func ClockOffset(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		if strings.TrimSpace(s) == "24:00" {
			return 24 * time.Hour, nil
		}
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
