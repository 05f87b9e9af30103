package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/planner"
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LifeOps") + "  " + a.renderTabs() + "\n\n")
	switch a.state {
	case viewPlan:
		b.WriteString(a.renderPlan())
	case viewTasks:
		b.WriteString(a.renderTasks())
	case viewBills:
		b.WriteString(a.renderBills())
	case viewMeds:
		b.WriteString(a.renderMeds())
	case viewProgress:
		b.WriteString(a.renderProgress())
	}
	b.WriteString("\n")
	switch {
	case a.adding:
		b.WriteString("New task: " + a.inputBuffer + "█\n" + mutedStyle.Render("[enter] save  [esc] cancel") + "\n")
	case a.confirmReset:
		b.WriteString(warnStyle.Render("Delete ALL data? [y/N]") + "\n")
	}
	if a.status != "" {
		style := statusStyle
		if a.isError {
			style = errorStyle
		}
		b.WriteString(style.Render(a.status) + "\n")
	}
	b.WriteString(renderHelp(a.keys.ShortHelp(a.state)))
	return b.String()
}

func (a *App) renderTabs() string {
	parts := make([]string, len(viewNames))
	for i, name := range viewNames {
		if view(i) == a.state {
			parts[i] = activeTab.Render(name)
		} else {
			parts[i] = tabStyle.Render(name)
		}
	}
	return strings.Join(parts, "")
}

func (a *App) renderPlan() string {
	if a.plan == nil {
		return mutedStyle.Render("No plan yet. Press g to ask the agents for today's plan.") + "\n" + a.renderReminders()
	}
	p := a.plan
	var b strings.Builder
	fmt.Fprintf(&b, "Plan for %s  %s\n", p.Day, mutedStyle.Render("generated "+p.GeneratedAt.In(a.loc).Format("Jan 2 15:04")))
	if p.Insights != "" {
		b.WriteString(insightsStyle.Render(p.Insights) + "\n")
	}
	if len(p.Tasks) == 0 {
		b.WriteString(mutedStyle.Render("  nothing scheduled") + "\n")
	}
	for i, t := range p.Tasks {
		b.WriteString(a.line(viewPlan, i, taskLine(t, a.loc)) + "\n")
	}
	if v := a.planLog.Validation; len(v.Checks) > 0 {
		if v.OK {
			b.WriteString(okStyle.Render("✓ validated") + "\n")
		} else {
			for _, c := range v.Failed() {
				b.WriteString(errorStyle.Render("✗ "+c.Name+": "+c.Detail) + "\n")
			}
		}
	}
	if len(a.planLog.Conflicts) > 0 {
		b.WriteString("\nConflicts\n")
		for _, c := range a.planLog.Conflicts {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-8s %s: %s", c.Kind, c.Title, c.Detail)) + "\n")
		}
	}
	if len(a.planLog.Deferred) > 0 {
		b.WriteString("\nDeferred\n")
		for _, c := range a.planLog.Deferred {
			b.WriteString(fmt.Sprintf("  %s %s\n", domainStyle(string(c.Domain)).Render(string(c.Domain)), c.Title))
		}
	}
	b.WriteString(a.renderReminders())
	return b.String()
}

func (a *App) renderReminders() string {
	if len(a.reminders) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nReminders\n")
	for _, r := range a.reminders {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  %-8s %s", r.Kind, r.Title)) + " " + mutedStyle.Render(r.Detail) + "\n")
	}
	return b.String()
}

func (a *App) renderTasks() string {
	if len(a.tasks) == 0 {
		return mutedStyle.Render("No tasks. Press a to add one.") + "\n"
	}
	var b strings.Builder
	for i, t := range a.tasks {
		b.WriteString(a.line(viewTasks, i, taskLine(t, nil)) + "\n")
	}
	return b.String()
}

func (a *App) renderBills() string {
	if len(a.bills) == 0 {
		return mutedStyle.Render("No bills. Add one with `lifeops bill add`.") + "\n"
	}
	var b strings.Builder
	for i, bill := range a.bills {
		paid := " "
		if bill.PaidThisMonth {
			paid = "✓"
		}
		row := fmt.Sprintf("[%s] day %2d  %-20s $%9.2f  %s", paid, bill.DueDay, bill.Name, float64(bill.AmountCents)/100, bill.Category)
		b.WriteString(a.line(viewBills, i, row) + "\n")
	}
	return b.String()
}

func (a *App) renderMeds() string {
	if len(a.meds) == 0 {
		return mutedStyle.Render("No medicines. Add one with `lifeops med add`.") + "\n"
	}
	today := startOfDay(a.now().In(a.loc))
	var b strings.Builder
	for i, m := range a.meds {
		taken := " "
		if m.LastTaken != nil && !m.LastTaken.Before(today) {
			taken = "✓"
		}
		row := fmt.Sprintf("[%s] %-5s %-20s %s %s", taken, m.TimeOfDay, m.Name, m.Dosage, m.Frequency)
		b.WriteString(a.line(viewMeds, i, row) + "\n")
	}
	return b.String()
}

func (a *App) renderProgress() string {
	if len(a.metrics) == 0 {
		return mutedStyle.Render(fmt.Sprintf("No progress in the last %d days. Log some with `lifeops progress add`.", progressDays)) + "\n"
	}
	var b strings.Builder
	for i, m := range a.metrics {
		b.WriteString(a.line(viewProgress, i, m) + "\n")
	}
	metric := a.metrics[a.cursor[viewProgress]]
	from, to := a.progressRange()
	b.WriteString("\n" + metric + " " + mutedStyle.Render("daily average") + "\n")
	for _, d := range DailyAverages(a.progress, metric, from, to, a.loc) {
		row := fmt.Sprintf("  %-10s %10s", d.Day.Format("Mon Jan 2"), strconv.FormatFloat(d.Value, 'f', -1, 64))
		if d.Count > 1 {
			row += mutedStyle.Render(fmt.Sprintf("  (%d entries)", d.Count))
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (a *App) line(v view, i int, text string) string {
	if a.width > 2 {
		text = ansi.Truncate(text, a.width-2, "…")
	}
	if a.state == v && a.cursor[v] == i {
		return cursorStyle.Render("> " + text)
	}
	return "  " + text
}

func taskLine(t repository.Task, loc *time.Location) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	when := ""
	if loc != nil && t.StartAt != nil && t.EndAt != nil {
		when = t.StartAt.In(loc).Format("15:04") + "-" + t.EndAt.In(loc).Format("15:04") + " "
	}
	title := t.Title
	if t.Completed {
		title = doneStyle.Render(title)
	}
	prio := planner.Priority(t.Priority).String()
	return fmt.Sprintf("%s %s%s %s %s", check, when, domainStyle(t.Domain).Render(fmt.Sprintf("%-8s", t.Domain)), title, mutedStyle.Render("("+prio+")"))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
