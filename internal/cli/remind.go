package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remindDays int

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Show bills coming due and medicines not yet taken today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if remindDays < 0 {
			return fmt.Errorf("days must not be negative")
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.rolloverBills(ctx); err != nil {
			return err
		}
		due, err := a.reminders().Due(ctx, remindDays)
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(due))
			for _, r := range due {
				out = append(out, map[string]any{
					"kind":   r.Kind,
					"id":     r.ID,
					"title":  r.Title,
					"due":    r.Due.In(a.loc).Format("2006-01-02"),
					"detail": r.Detail,
				})
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		w := cmd.OutOrStdout()
		if len(due) == 0 {
			printSuccess(w, "Nothing due")
			return nil
		}
		for _, r := range due {
			_, _ = warningColor.Fprintf(w, "  %-8s %s", r.Kind, r.Title)
			_, _ = dimColor.Fprintf(w, "  %s\n", r.Detail)
		}
		return nil
	},
}

func init() {
	remindCmd.Flags().IntVarP(&remindDays, "days", "d", 3, "Include bills due within this many days")
}
