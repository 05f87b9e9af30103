package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.LLM.APIKey != "" {
			cfg.LLM.APIKey = maskKey(cfg.LLM.APIKey)
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), cfg)
		}
		w := cmd.OutOrStdout()
		printSection(w, "Config")
		printLabelValue(w, "File", configFile())
		printLabelValue(w, "Database", cfg.Database.Path)
		printLabelValue(w, "LLM", fmt.Sprintf("%s (%s, temperature %.1f, timeout %s)", cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.Timeout))
		printLabelValue(w, "API key env", cfg.LLM.APIKeyEnv)
		printLabelValue(w, "Day", cfg.Planner.DayStart+"-"+cfg.Planner.DayEnd+" "+cfg.Planner.Location().String())
		printLabelValue(w, "Buffer", cfg.Planner.Buffer.String())
		printLabelValue(w, "Max per domain", fmt.Sprint(cfg.Planner.MaxPerDomain))
		printLabelValue(w, "Dedupe threshold", fmt.Sprintf("%.2f", cfg.Planner.DedupeThreshold))
		weights := make([]string, 0, len(cfg.Planner.Weights))
		for d, n := range cfg.Planner.Weights {
			weights = append(weights, fmt.Sprintf("%s=%d", d, n))
		}
		sort.Strings(weights)
		printLabelValue(w, "Weights", strings.Join(weights, " "))
		printLabelValue(w, "Log level", cfg.Log.Level)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Wrote "+path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd)
}

// configFile mirrors the path config.Save writes to.
func configFile() string {
	if p := os.Getenv("LIFEOPS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "lifeops", "config.toml")
}
