package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/secrets"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Store LLM API keys encrypted on disk",
}

var keySetCmd = &cobra.Command{
	Use:   "set <provider> [key]",
	Short: "Save an API key (read from stdin when omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 2 {
			key = args[1]
		} else {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read key: %w", err)
			}
			key = line
		}
		store, err := secrets.Default()
		if err != nil {
			return err
		}
		if err := store.Set(args[0], strings.TrimSpace(key)); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Saved key for "+strings.ToLower(strings.TrimSpace(args[0])))
		return nil
	},
}

var keyRmCmd = &cobra.Command{
	Use:   "rm <provider>",
	Short: "Delete a saved API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secrets.Default()
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			if errors.Is(err, secrets.ErrKeyNotFound) {
				return fmt.Errorf("no key saved for %s", args[0])
			}
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Deleted key for "+strings.ToLower(strings.TrimSpace(args[0])))
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status [provider]",
	Short: "Show saved keys (masked), or all saved providers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secrets.Default()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(args) == 0 {
			entries, err := store.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printDim(w, "No keys saved")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Provider, e.SavedAt.Local().Format("2006-01-02 15:04")})
			}
			printTable(w, []string{"PROVIDER", "SAVED"}, rows)
			return nil
		}
		key, err := store.Get(args[0])
		switch {
		case errors.Is(err, secrets.ErrKeyNotFound):
			printDim(w, "No key saved for "+args[0])
			return nil
		case err != nil:
			return err
		}
		printLabelValue(w, args[0], maskKey(key))
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyRmCmd, keyStatusCmd)
}

func maskKey(k string) string {
	if len(k) <= 8 {
		return strings.Repeat("•", len(k))
	}
	return k[:4] + strings.Repeat("•", 8) + k[len(k)-4:]
}
