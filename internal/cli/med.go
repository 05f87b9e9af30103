package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/config"
	"github.com/jask/lifeops/internal/database/repository"
)

var (
	medDosage     string
	medFrequency  string
	medTime       string
	medStart      string
	medEnd        string
	medNoReminder bool
	medActiveOnly bool
)

var medCmd = &cobra.Command{
	Use:     "med",
	Aliases: []string{"medicine"},
	Short:   "Track medicines and doses",
}

var medAddCmd = &cobra.Command{
	Use:     "add <name>",
	Short:   "Add a medicine schedule",
	Example: `  lifeops med add "Vitamin D" --dosage "1000 IU" --time 08:00`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			return fmt.Errorf("medicine name is empty")
		}
		if _, err := config.ClockOffset(medTime); err != nil {
			return fmt.Errorf("time: %w", err)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		start, err := parseDay(medStart, a.now(), a.loc)
		if err != nil {
			return err
		}
		m := repository.Medicine{
			ID:              uuid.NewString(),
			Name:            name,
			Dosage:          strings.TrimSpace(medDosage),
			Frequency:       strings.TrimSpace(medFrequency),
			TimeOfDay:       strings.TrimSpace(medTime),
			StartDate:       start.UTC(),
			ReminderEnabled: !medNoReminder,
		}
		if medEnd != "" {
			end, err := parseDay(medEnd, a.now(), a.loc)
			if err != nil {
				return err
			}
			if end.Before(start) {
				return fmt.Errorf("end date %s is before start date %s", medEnd, start.Format("2006-01-02"))
			}
			end = end.UTC()
			m.EndDate = &end
		}
		if err := a.medicines.Insert(ctx, m); err != nil {
			return fmt.Errorf("add medicine: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), medJSON(m, a.loc))
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Added %s %s at %s (%s)", name, m.Dosage, m.TimeOfDay, shortID(m.ID)))
		return nil
	},
}

var medListCmd = &cobra.Command{
	Use:   "list",
	Short: "List medicines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		today, _ := parseDay("", a.now(), a.loc)
		var meds []repository.Medicine
		if medActiveOnly {
			meds, err = a.medicines.ListActive(ctx, today)
		} else {
			meds, err = a.medicines.List(ctx)
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(meds))
			for _, m := range meds {
				out = append(out, medJSON(m, a.loc))
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		if len(meds) == 0 {
			printDim(cmd.OutOrStdout(), "No medicines.")
			return nil
		}
		rows := make([][]string, 0, len(meds))
		for _, m := range meds {
			taken := " "
			if m.LastTaken != nil && !m.LastTaken.Before(today) {
				taken = "✓"
			}
			course := m.StartDate.In(a.loc).Format("Jan 2") + " →"
			if m.EndDate != nil {
				course += " " + m.EndDate.In(a.loc).Format("Jan 2")
			}
			rows = append(rows, []string{shortID(m.ID), "[" + taken + "]", m.TimeOfDay, m.Name, m.Dosage, m.Frequency, course})
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "TODAY", "TIME", "NAME", "DOSAGE", "FREQUENCY", "COURSE"}, rows)
		return nil
	},
}

var medTakenCmd = &cobra.Command{
	Use:   "taken <medicine-id>",
	Short: "Record that today's dose was taken",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMedicine(cmd, args[0], func(ctx context.Context, a *app, m repository.Medicine) (string, error) {
			return "Took " + m.Name, a.medicines.MarkTaken(ctx, m.ID, a.now())
		})
	},
}

var medRmCmd = &cobra.Command{
	Use:   "rm <medicine-id>",
	Short: "Delete a medicine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMedicine(cmd, args[0], func(ctx context.Context, a *app, m repository.Medicine) (string, error) {
			return "Deleted " + m.Name, a.medicines.Delete(ctx, m.ID)
		})
	},
}

func init() {
	medAddCmd.Flags().StringVar(&medDosage, "dosage", "", "Dose, e.g. \"500 mg\"")
	medAddCmd.Flags().StringVar(&medFrequency, "frequency", "daily", "How often, e.g. daily, weekly")
	medAddCmd.Flags().StringVar(&medTime, "time", "08:00", "Time of day (HH:MM)")
	medAddCmd.Flags().StringVar(&medStart, "start", "", "Course start (YYYY-MM-DD, default today)")
	medAddCmd.Flags().StringVar(&medEnd, "end", "", "Course end (YYYY-MM-DD)")
	medAddCmd.Flags().BoolVar(&medNoReminder, "no-reminder", false, "Do not include in reminders")
	medListCmd.Flags().BoolVar(&medActiveOnly, "active", false, "Only medicines whose course has not ended")
	medCmd.AddCommand(medAddCmd, medListCmd, medTakenCmd, medRmCmd)
}

func withMedicine(cmd *cobra.Command, prefix string, fn func(context.Context, *app, repository.Medicine) (string, error)) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.medicines.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(all))
	for i, m := range all {
		ids[i] = m.ID
	}
	id, err := resolveID(prefix, ids)
	if err != nil {
		return err
	}
	m, err := a.medicines.Get(ctx, id)
	if err != nil {
		return err
	}
	msg, err := fn(ctx, a, m)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), map[string]any{"success": true, "id": m.ID})
	}
	printSuccess(cmd.OutOrStdout(), msg)
	return nil
}

func medJSON(m repository.Medicine, loc *time.Location) map[string]any {
	out := map[string]any{
		"id":        m.ID,
		"name":      m.Name,
		"dosage":    m.Dosage,
		"frequency": m.Frequency,
		"timeOfDay": m.TimeOfDay,
		"startDate": m.StartDate.In(loc).Format("2006-01-02"),
		"reminder":  m.ReminderEnabled,
	}
	if m.EndDate != nil {
		out["endDate"] = m.EndDate.In(loc).Format("2006-01-02")
	}
	if m.LastTaken != nil {
		out["lastTaken"] = m.LastTaken.In(loc).Format(time.RFC3339)
	}
	return out
}
