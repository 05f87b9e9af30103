package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/agents"
	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/planner"
	"github.com/jask/lifeops/internal/prefs"
	"github.com/jask/lifeops/internal/service"
)

var (
	planContextFile string
	planDay         string
	planOffline     bool
	planHistoryN    int
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Ask the agents for today's reconciled plan",
	Long: `Run the health, finance and study agents, let the commander coordinate their
advice, and reconcile everything into one conflict-free schedule for the day.

The user context comes from --context (YAML) or, when omitted, the profile saved
by the previous --context run. Plans that fail validation are shown but not saved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		day, err := parseDay(planDay, a.now(), a.loc)
		if err != nil {
			return err
		}
		uc, err := loadProfile(planContextFile, a.now())
		if err != nil {
			return err
		}
		p, err := a.provider(ctx, planOffline)
		if err != nil {
			return err
		}

		res, runErr := a.commander(p).RunFor(ctx, uc, day)
		if runErr != nil && !errors.Is(runErr, planner.ErrInvalidPlan) {
			return runErr
		}
		if runErr == nil && planContextFile != "" {
			if err := saveProfile(uc); err != nil {
				printWarning(cmd.ErrOrStderr(), fmt.Sprintf("profile not saved: %v", err))
			}
		}

		view := planFromResult(res, a.loc)
		if jsonOutput {
			if err := outputJSON(cmd.OutOrStdout(), view); err != nil {
				return err
			}
			return runErr
		}
		renderPlan(cmd.OutOrStdout(), view)
		return runErr
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show [plan-id]",
	Short: "Show the latest (or a given) stored plan",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var stored repository.Plan
		if len(args) == 1 {
			stored, err = findPlan(ctx, a, args[0])
		} else {
			stored, err = a.commander(nil).Latest(ctx)
		}
		if errors.Is(err, repository.ErrNotFound) {
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), nil)
			}
			printDim(cmd.OutOrStdout(), "No plan yet. Run `lifeops plan` first.")
			return nil
		}
		if err != nil {
			return err
		}
		view, err := planFromStored(stored, a.loc)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), view)
		}
		renderPlan(cmd.OutOrStdout(), view)
		return nil
	},
}

var planHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently generated plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		plans, err := a.plans.List(ctx, planHistoryN)
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(plans))
			for _, p := range plans {
				out = append(out, map[string]any{
					"id":          p.ID,
					"day":         p.Day,
					"generatedAt": p.GeneratedAt,
					"insights":    p.Insights,
				})
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		if len(plans) == 0 {
			printDim(cmd.OutOrStdout(), "No plans yet.")
			return nil
		}
		rows := make([][]string, 0, len(plans))
		for _, p := range plans {
			log, err := service.DecodePlanLog(p)
			if err != nil {
				return fmt.Errorf("plan %s: %w", shortID(p.ID), err)
			}
			rows = append(rows, []string{
				shortID(p.ID), p.Day, p.GeneratedAt.In(a.loc).Format("Jan 2 15:04"),
				fmt.Sprint(len(log.Conflicts)), fmt.Sprint(len(log.Deferred)),
			})
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "DAY", "GENERATED", "CONFLICTS", "DEFERRED"}, rows)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planContextFile, "context", "c", "", "YAML file describing your current situation")
	planCmd.Flags().StringVar(&planDay, "day", "", "Day to plan (YYYY-MM-DD, default today)")
	planCmd.Flags().BoolVar(&planOffline, "offline", false, "Use the built-in rule-based agents instead of the LLM")
	planHistoryCmd.Flags().IntVarP(&planHistoryN, "limit", "n", 10, "Number of plans to list")
	planCmd.AddCommand(planShowCmd, planHistoryCmd)
}

// findPlan resolves an id prefix against the most recent plans.
func findPlan(ctx context.Context, a *app, prefix string) (repository.Plan, error) {
	recent, err := a.plans.List(ctx, 100)
	if err != nil {
		return repository.Plan{}, err
	}
	ids := make([]string, len(recent))
	for i, p := range recent {
		ids[i] = p.ID
	}
	id, err := resolveID(prefix, ids)
	if err != nil {
		return repository.Plan{}, err
	}
	return a.plans.Get(ctx, id)
}

func loadProfile(path string, now time.Time) (agents.UserContext, error) {
	if path != "" {
		return agents.LoadUserContext(path, now)
	}
	dir, err := prefs.Dir()
	if err != nil {
		return agents.DefaultUserContext(now), nil
	}
	return prefs.LoadProfile(dir, now)
}

func saveProfile(uc agents.UserContext) error {
	dir, err := prefs.Dir()
	if err != nil {
		return err
	}
	return prefs.SaveProfile(dir, uc)
}

type planTaskView struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	Title     string `json:"title"`
	Priority  string `json:"priority"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Completed bool   `json:"completed"`
}

// planView is the printable and JSON form shared by fresh and stored plans.
type planView struct {
	ID         string              `json:"id,omitempty"`
	Day        string              `json:"day"`
	Insights   string              `json:"insights"`
	Tasks      []planTaskView      `json:"tasks"`
	Conflicts  []planner.Conflict  `json:"conflicts"`
	Deferred   []planner.Candidate `json:"deferred"`
	Validation planner.Validation  `json:"validation"`
	Failures   map[string]string   `json:"failures,omitempty"`
	Saved      bool                `json:"saved"`
}

func planFromResult(res service.RunResult, loc *time.Location) planView {
	v := planView{
		ID:         res.PlanID,
		Day:        res.Plan.Day.Format("2006-01-02"),
		Insights:   res.Insights,
		Conflicts:  res.Plan.Conflicts,
		Deferred:   res.Plan.Deferred,
		Validation: res.Plan.Validation,
		Saved:      res.PlanID != "",
	}
	for _, t := range res.Plan.Tasks {
		v.Tasks = append(v.Tasks, planTaskView{
			ID:       t.ID,
			Domain:   string(t.Domain),
			Title:    t.Title,
			Priority: t.Priority.String(),
			Start:    t.Start.In(loc).Format("15:04"),
			End:      t.End.In(loc).Format("15:04"),
		})
	}
	if len(res.Failures) > 0 {
		v.Failures = map[string]string{}
		for d, err := range res.Failures {
			v.Failures[string(d)] = err.Error()
		}
	}
	if res.CoordinationErr != nil {
		if v.Failures == nil {
			v.Failures = map[string]string{}
		}
		v.Failures["coordination"] = res.CoordinationErr.Error()
	}
	return v
}

func planFromStored(p repository.Plan, loc *time.Location) (planView, error) {
	log, err := service.DecodePlanLog(p)
	if err != nil {
		return planView{}, err
	}
	v := planView{
		ID:         p.ID,
		Day:        p.Day,
		Insights:   p.Insights,
		Conflicts:  log.Conflicts,
		Deferred:   log.Deferred,
		Validation: log.Validation,
		Saved:      true,
	}
	for _, t := range p.Tasks {
		tv := planTaskView{
			ID:        t.ID,
			Domain:    t.Domain,
			Title:     t.Title,
			Priority:  planner.Priority(t.Priority).String(),
			Completed: t.Completed,
		}
		if t.StartAt != nil && t.EndAt != nil {
			tv.Start = t.StartAt.In(loc).Format("15:04")
			tv.End = t.EndAt.In(loc).Format("15:04")
		}
		v.Tasks = append(v.Tasks, tv)
	}
	return v, nil
}

func renderPlan(w io.Writer, v planView) {
	printSection(w, "Plan for "+v.Day)
	if v.Insights != "" {
		_, _ = fmt.Fprintln(w, v.Insights)
		_, _ = fmt.Fprintln(w)
	}
	if len(v.Tasks) == 0 {
		printDim(w, "  nothing scheduled")
	}
	for _, t := range v.Tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		_, _ = fmt.Fprintf(w, "  %s %s-%s %s %s ", check, t.Start, t.End, domainLabel(t.Domain), t.Title)
		_, _ = dimColor.Fprintf(w, "(%s, %s)\n", t.Priority, shortID(t.ID))
	}
	_, _ = fmt.Fprintln(w)

	if len(v.Conflicts) > 0 {
		printSection(w, "Conflicts")
		for _, c := range v.Conflicts {
			line := fmt.Sprintf("%-8s %s", c.Kind, c.Title)
			if c.With != "" {
				line += " / " + c.With
			}
			if c.Detail != "" {
				line += ": " + c.Detail
			}
			printList(w, []string{line}, 1)
		}
		_, _ = fmt.Fprintln(w)
	}
	if len(v.Deferred) > 0 {
		printSection(w, "Deferred")
		for _, c := range v.Deferred {
			_, _ = fmt.Fprintf(w, "  %s %s (%s)\n", domainLabel(string(c.Domain)), c.Title, c.Priority)
		}
		_, _ = fmt.Fprintln(w)
	}
	if len(v.Failures) > 0 {
		names := make([]string, 0, len(v.Failures))
		for d := range v.Failures {
			names = append(names, d)
		}
		sort.Strings(names)
		for _, d := range names {
			printWarning(w, fmt.Sprintf("%s agent failed: %s", d, v.Failures[d]))
		}
	}

	if v.Validation.OK {
		printSuccess(w, fmt.Sprintf("validated (%d checks)", len(v.Validation.Checks)))
	} else {
		for _, c := range v.Validation.Failed() {
			printFailure(w, c.Name+": "+c.Detail)
		}
	}
	if !v.Saved {
		printWarning(w, "plan not saved")
	}
}
