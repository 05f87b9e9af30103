package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/planner"
	"github.com/jask/lifeops/internal/service"
)

var (
	progressDate string
	progressDays int
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Record and import progress metrics",
}

var progressAddCmd = &cobra.Command{
	Use:     "add <domain> <metric> <value>",
	Short:   "Record one metric value",
	Example: `  lifeops progress add health sleep_hours 7.5`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, ok := planner.ParseDomain(args[0])
		if !ok {
			return fmt.Errorf("domain %q: %w", args[0], planner.ErrInvalidDomain)
		}
		metric := strings.TrimSpace(args[1])
		if metric == "" {
			return fmt.Errorf("metric is empty")
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(args[2]), 64)
		if err != nil {
			return fmt.Errorf("value %q: %w", args[2], err)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		at := a.now()
		if progressDate != "" {
			if at, err = parseDay(progressDate, a.now(), a.loc); err != nil {
				return err
			}
		}
		p := repository.ProgressRecord{
			ID:         uuid.NewString(),
			Domain:     string(d),
			Metric:     metric,
			Value:      value,
			RecordedAt: at.UTC(),
		}
		if err := a.progress.Insert(ctx, p); err != nil {
			return fmt.Errorf("record progress: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), map[string]any{"id": p.ID, "domain": p.Domain, "metric": p.Metric, "value": p.Value})
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Recorded %s %s = %g", d, metric, value))
		return nil
	},
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent progress records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if progressDays < 1 {
			return fmt.Errorf("days must be at least 1")
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		today, _ := parseDay("", a.now(), a.loc)
		records, err := a.progress.List(ctx, today.AddDate(0, 0, -(progressDays-1)), today.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(records))
			for _, r := range records {
				out = append(out, map[string]any{
					"id":         r.ID,
					"domain":     r.Domain,
					"metric":     r.Metric,
					"value":      r.Value,
					"recordedAt": r.RecordedAt.In(a.loc).Format("2006-01-02"),
				})
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		if len(records) == 0 {
			printDim(cmd.OutOrStdout(), "No progress records.")
			return nil
		}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.RecordedAt.In(a.loc).Format("Jan 2"), r.Domain, r.Metric, strconv.FormatFloat(r.Value, 'g', -1, 64)})
		}
		printTable(cmd.OutOrStdout(), []string{"DATE", "DOMAIN", "METRIC", "VALUE"}, rows)
		return nil
	},
}

var progressImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import progress records from CSV (date,domain,metric,value)",
	Long: `Import progress records from a CSV file with columns date,domain,metric,value.
Dates are YYYY-MM-DD in the planner timezone. A header row and lines starting
with # are skipped. Rows already imported are skipped, so re-running is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		ingest := &service.IngestService{Progress: a.progress}
		res, err := ingest.ImportProgressCSV(ctx, f, a.loc)
		if err != nil {
			return err
		}
		if jsonOutput {
			errs := make([]string, 0, len(res.Errors))
			for _, e := range res.Errors {
				errs = append(errs, e.Error())
			}
			return outputJSON(cmd.OutOrStdout(), map[string]any{"imported": res.Imported, "skipped": res.Skipped, "errors": errs})
		}
		w := cmd.OutOrStdout()
		printSuccess(w, fmt.Sprintf("Imported %d, skipped %d duplicate(s)", res.Imported, res.Skipped))
		for _, e := range res.Errors {
			printWarning(w, e.Error())
		}
		return nil
	},
}

func init() {
	progressAddCmd.Flags().StringVar(&progressDate, "date", "", "Record date (YYYY-MM-DD, default now)")
	progressListCmd.Flags().IntVar(&progressDays, "days", 7, "Window in days, ending today")
	progressCmd.AddCommand(progressAddCmd, progressListCmd, progressImportCmd)
}
