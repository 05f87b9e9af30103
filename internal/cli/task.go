package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/planner"
	"github.com/jask/lifeops/internal/service"
)

var (
	taskDomain   string
	taskPriority string
	taskDue      string
	taskOffline  bool
	taskPending  bool
	taskListDom  string
	taskListPlan string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task; the domain is inferred when --domain is omitted",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("task title is empty")
		}
		prio, ok := planner.ParsePriority(taskPriority)
		if !ok {
			return fmt.Errorf("priority %q: want low, medium, high or urgent", taskPriority)
		}

		var domain planner.Domain
		if taskDomain != "" {
			d, ok := planner.ParseDomain(taskDomain)
			if !ok {
				return fmt.Errorf("domain %q: %w", taskDomain, planner.ErrInvalidDomain)
			}
			domain = d
		} else {
			domain = a.classifier(ctx, taskOffline).Classify(ctx, title)
		}

		t := repository.Task{
			ID:       uuid.NewString(),
			Domain:   string(domain),
			Title:    title,
			Priority: int(prio),
			Source:   repository.SourceUser,
		}
		if taskDue != "" {
			due, err := parseDay(taskDue, a.now(), a.loc)
			if err != nil {
				return err
			}
			due = due.UTC()
			t.DueAt = &due
		}
		if err := a.tasks.Insert(ctx, t); err != nil {
			return fmt.Errorf("add task: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), taskJSON(t, a.loc))
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Added %s task %q (%s)", domain, title, shortID(t.ID)))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		f := repository.TaskFilters{PendingOnly: taskPending}
		if taskListDom != "" {
			d, ok := planner.ParseDomain(taskListDom)
			if !ok {
				return fmt.Errorf("domain %q: %w", taskListDom, planner.ErrInvalidDomain)
			}
			f.Domain = string(d)
		}
		if taskListPlan != "" {
			p, err := findPlan(ctx, a, taskListPlan)
			if err != nil {
				return err
			}
			f.PlanID = p.ID
		}
		tasks, err := a.tasks.List(ctx, f)
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(tasks))
			for _, t := range tasks {
				out = append(out, taskJSON(t, a.loc))
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}
		if len(tasks) == 0 {
			printDim(cmd.OutOrStdout(), "No tasks.")
			return nil
		}
		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			done := " "
			if t.Completed {
				done = "x"
			}
			when := ""
			switch {
			case t.StartAt != nil && t.EndAt != nil:
				when = t.StartAt.In(a.loc).Format("Jan 2 15:04") + "-" + t.EndAt.In(a.loc).Format("15:04")
			case t.DueAt != nil:
				when = "due " + t.DueAt.In(a.loc).Format("Jan 2")
			}
			rows = append(rows, []string{shortID(t.ID), "[" + done + "]", t.Domain, planner.Priority(t.Priority).String(), when, t.Title})
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "DONE", "DOMAIN", "PRIORITY", "WHEN", "TITLE"}, rows)
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTask(cmd, args[0], func(ctx context.Context, a *app, t repository.Task) (string, error) {
			return "Completed " + t.Title, a.tasks.MarkComplete(ctx, t.ID, a.now())
		})
	},
}

var taskUndoCmd = &cobra.Command{
	Use:   "undo <task-id>",
	Short: "Mark a task pending again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTask(cmd, args[0], func(ctx context.Context, a *app, t repository.Task) (string, error) {
			return "Reopened " + t.Title, a.tasks.MarkPending(ctx, t.ID)
		})
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTask(cmd, args[0], func(ctx context.Context, a *app, t repository.Task) (string, error) {
			return "Deleted " + t.Title, a.tasks.Delete(ctx, t.ID)
		})
	},
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskDomain, "domain", "d", "", "health, finance, study, personal or general")
	taskAddCmd.Flags().StringVarP(&taskPriority, "priority", "p", "medium", "low, medium, high or urgent")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().BoolVar(&taskOffline, "offline", false, "Classify with keyword rules only")
	taskListCmd.Flags().BoolVar(&taskPending, "pending", false, "Only pending tasks")
	taskListCmd.Flags().StringVarP(&taskListDom, "domain", "d", "", "Filter by domain")
	taskListCmd.Flags().StringVar(&taskListPlan, "plan", "", "Filter by plan id")
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskDoneCmd, taskUndoCmd, taskRmCmd)
}

// classifier uses the configured provider when it can be built, keyword rules otherwise.
func (a *app) classifier(ctx context.Context, offline bool) *service.Classifier {
	c := &service.Classifier{Log: a.log}
	if offline {
		return c
	}
	p, err := a.provider(ctx, false)
	if err != nil {
		a.log.Debug("classifier falls back to keyword rules", zap.Error(err))
		return c
	}
	c.Provider = p
	return c
}

// withTask resolves an id prefix and applies fn to the task.
func withTask(cmd *cobra.Command, prefix string, fn func(context.Context, *app, repository.Task) (string, error)) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.tasks.List(ctx, repository.TaskFilters{})
	if err != nil {
		return err
	}
	ids := make([]string, len(all))
	for i, t := range all {
		ids[i] = t.ID
	}
	id, err := resolveID(prefix, ids)
	if err != nil {
		return err
	}
	t, err := a.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	msg, err := fn(ctx, a, t)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), map[string]any{"success": true, "id": t.ID})
	}
	printSuccess(cmd.OutOrStdout(), msg)
	return nil
}

func taskJSON(t repository.Task, loc *time.Location) map[string]any {
	out := map[string]any{
		"id":        t.ID,
		"domain":    t.Domain,
		"title":     t.Title,
		"priority":  planner.Priority(t.Priority).String(),
		"source":    t.Source,
		"completed": t.Completed,
	}
	if t.StartAt != nil {
		out["start"] = t.StartAt.In(loc).Format(time.RFC3339)
	}
	if t.EndAt != nil {
		out["end"] = t.EndAt.In(loc).Format(time.RFC3339)
	}
	if t.DueAt != nil {
		out["due"] = t.DueAt.In(loc).Format("2006-01-02")
	}
	if t.PlanID != nil {
		out["planId"] = *t.PlanID
	}
	return out
}
