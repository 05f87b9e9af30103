package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/service"
)

var (
	reflectWeek    string
	reflectOffline bool
	reflectHistory int
)

var reflectCmd = &cobra.Command{
	Use:   "reflect",
	Short: "Weekly reflection on completed tasks, study and progress",
	Long: `Tally the week's tasks per domain, the completion streak, study sessions and
progress records, then ask the reflection agent for a short review. When the
agent is unavailable a deterministic summary is used instead. The week's scores
are stored so later runs can compare.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var weekStart time.Time
		if reflectWeek != "" {
			day, err := parseDay(reflectWeek, a.now(), a.loc)
			if err != nil {
				return err
			}
			weekStart = service.MondayOf(day)
		}
		p, err := a.provider(ctx, reflectOffline)
		if err != nil {
			return err
		}
		report, err := a.reflection(p).Weekly(ctx, weekStart)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), map[string]any{
				"week":       report.Week,
				"reflection": report.Reflection,
				"fromModel":  report.FromModel,
			})
		}

		w := cmd.OutOrStdout()
		wk := report.Week
		printSection(w, "Week of "+wk.WeekStart)
		printLabelValue(w, "Tasks", fmt.Sprintf("%d of %d completed", wk.Completed, wk.Total))
		printLabelValue(w, "Streak", fmt.Sprintf("%d day(s)", wk.Streak))
		printLabelValue(w, "Study", fmt.Sprintf("%d min over %d session(s)", wk.Study.TotalMinutes, wk.Study.Sessions))
		names := make([]string, 0, len(wk.Domains))
		for d := range wk.Domains {
			names = append(names, d)
		}
		sort.Strings(names)
		rows := make([][]string, 0, len(names))
		for _, d := range names {
			dc := wk.Domains[d]
			rows = append(rows, []string{d, fmt.Sprintf("%d/%d", dc.Completed, dc.Total), fmt.Sprintf("%d%%", dc.Score)})
		}
		_, _ = fmt.Fprintln(w)
		printTable(w, []string{"DOMAIN", "DONE", "SCORE"}, rows)
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, report.Reflection)
		if !report.FromModel {
			printDim(w, "(summary generated without the reflection agent)")
		}
		return nil
	},
}

var reflectHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored weekly scores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		weeks, err := a.weekly.List(ctx, reflectHistory)
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(weeks))
			for _, wp := range weeks {
				out = append(out, map[string]any{
					"weekStart":  wp.WeekStart,
					"health":     wp.HealthScore,
					"finance":    wp.FinanceScore,
					"study":      wp.StudyScore,
					"streak":     wp.ConsistencyStreak,
					"reflection": wp.Reflection,
				})
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		if len(weeks) == 0 {
			printDim(cmd.OutOrStdout(), "No weekly reflections yet.")
			return nil
		}
		rows := make([][]string, 0, len(weeks))
		for _, wp := range weeks {
			rows = append(rows, []string{
				wp.WeekStart,
				fmt.Sprintf("%d%%", wp.HealthScore),
				fmt.Sprintf("%d%%", wp.FinanceScore),
				fmt.Sprintf("%d%%", wp.StudyScore),
				fmt.Sprint(wp.ConsistencyStreak),
			})
		}
		printTable(cmd.OutOrStdout(), []string{"WEEK", "HEALTH", "FINANCE", "STUDY", "STREAK"}, rows)
		return nil
	},
}

func init() {
	reflectCmd.Flags().StringVar(&reflectWeek, "week", "", "Any day in the week to reflect on (YYYY-MM-DD, default this week)")
	reflectCmd.Flags().BoolVar(&reflectOffline, "offline", false, "Use the built-in reflection instead of the LLM")
	reflectHistoryCmd.Flags().IntVarP(&reflectHistory, "limit", "n", 8, "Number of weeks to list")
	reflectCmd.AddCommand(reflectHistoryCmd)
}
