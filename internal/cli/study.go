package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/database/repository"
)

var (
	studyScore int
	studyNotes string
	studyDate  string
	studyDays  int
	studyLimit int
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Log study sessions",
}

var studyLogCmd = &cobra.Command{
	Use:     "log <minutes> <subject>",
	Short:   "Log a study session",
	Example: `  lifeops study log 50 Maths --score 8`,
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		minutes, err := strconv.Atoi(args[0])
		if err != nil || minutes <= 0 {
			return fmt.Errorf("minutes %q: want a positive whole number", args[0])
		}
		subject := strings.TrimSpace(strings.Join(args[1:], " "))
		if subject == "" {
			return fmt.Errorf("subject is empty")
		}
		if studyScore < 1 || studyScore > 10 {
			return fmt.Errorf("score %d out of range 1-10", studyScore)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		date := a.now()
		if studyDate != "" {
			if date, err = parseDay(studyDate, a.now(), a.loc); err != nil {
				return err
			}
		}
		s := repository.StudySession{
			ID:                uuid.NewString(),
			Date:              date.UTC(),
			DurationMinutes:   minutes,
			Subject:           subject,
			ProductivityScore: studyScore,
			Notes:             studyNotes,
		}
		if err := a.study.Insert(ctx, s); err != nil {
			return fmt.Errorf("log study: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), map[string]any{"id": s.ID, "minutes": minutes, "subject": subject})
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Logged %d min of %s", minutes, subject))
		return nil
	},
}

var studyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent study sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.study.List(ctx, studyLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(sessions))
			for _, s := range sessions {
				out = append(out, map[string]any{
					"id":           s.ID,
					"date":         s.Date.In(a.loc).Format("2006-01-02"),
					"minutes":      s.DurationMinutes,
					"subject":      s.Subject,
					"productivity": s.ProductivityScore,
					"notes":        s.Notes,
				})
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		if len(sessions) == 0 {
			printDim(cmd.OutOrStdout(), "No study sessions.")
			return nil
		}
		rows := make([][]string, 0, len(sessions))
		for _, s := range sessions {
			rows = append(rows, []string{
				s.Date.In(a.loc).Format("Jan 2"), fmt.Sprintf("%d min", s.DurationMinutes),
				s.Subject, fmt.Sprintf("%d/10", s.ProductivityScore), s.Notes,
			})
		}
		printTable(cmd.OutOrStdout(), []string{"DATE", "DURATION", "SUBJECT", "FOCUS", "NOTES"}, rows)
		return nil
	},
}

var studySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarise recent study time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if studyDays < 1 {
			return fmt.Errorf("days must be at least 1")
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		today, _ := parseDay("", a.now(), a.loc)
		since := today.AddDate(0, 0, -(studyDays - 1))
		sum, err := a.study.Summary(ctx, since)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), map[string]any{
				"since":           since.Format("2006-01-02"),
				"totalMinutes":    sum.TotalMinutes,
				"avgProductivity": sum.AvgScore,
				"sessions":        sum.Sessions,
			})
		}
		w := cmd.OutOrStdout()
		printSection(w, fmt.Sprintf("Study since %s", since.Format("Jan 2")))
		printLabelValue(w, "Sessions", strconv.Itoa(sum.Sessions))
		printLabelValue(w, "Total", fmt.Sprintf("%dh %02dm", sum.TotalMinutes/60, sum.TotalMinutes%60))
		printLabelValue(w, "Avg focus", fmt.Sprintf("%.1f/10", sum.AvgScore))
		return nil
	},
}

func init() {
	studyLogCmd.Flags().IntVarP(&studyScore, "score", "s", 5, "Productivity score (1-10)")
	studyLogCmd.Flags().StringVarP(&studyNotes, "notes", "m", "", "Notes")
	studyLogCmd.Flags().StringVar(&studyDate, "date", "", "Session date (YYYY-MM-DD, default now)")
	studyListCmd.Flags().IntVarP(&studyLimit, "limit", "n", 10, "Number of sessions to list")
	studySummaryCmd.Flags().IntVar(&studyDays, "days", 7, "Window in days, ending today")
	studyCmd.AddCommand(studyLogCmd, studyListCmd, studySummaryCmd)
}
