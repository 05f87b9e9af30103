package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/lifeops/internal/agents"
	"github.com/jask/lifeops/internal/database/repository"
	"github.com/jask/lifeops/internal/planner"
	"github.com/jask/lifeops/internal/service"
)

// App ties together views.
type App struct {
	ctx      context.Context
	repos    Repos
	services Services
	profile  agents.UserContext
	keys     keyMap
	now      func() time.Time
	loc      *time.Location

	state     view
	cursor    map[view]int
	plan      *repository.Plan
	planLog   service.PlanLog
	tasks     []repository.Task
	bills     []repository.Bill
	meds      []repository.Medicine
	reminders []service.Reminder
	progress  []repository.ProgressRecord
	metrics   []string

	adding       bool
	inputBuffer  string
	confirmReset bool
	busy         bool
	status       string
	isError      bool
	width        int
}

type Repos struct {
	Tasks     *repository.TaskRepo
	Bills     *repository.BillRepo
	Medicines *repository.MedicineRepo
	Progress  *repository.ProgressRepo
}

type Services struct {
	Commander   *service.Commander
	Reflection  *service.Reflection
	Classifier  *service.Classifier
	Reminders   *service.Reminders
	Maintenance *service.MaintenanceService
}

type view int

const (
	viewPlan view = iota
	viewTasks
	viewBills
	viewMeds
	viewProgress
)

var viewNames = []string{"Plan", "Tasks", "Bills", "Medicines", "Progress"}

const progressDays = 14

func New(ctx context.Context, repos Repos, services Services, profile agents.UserContext, loc *time.Location) *App {
	if loc == nil {
		loc = time.Local
	}
	return &App{
		ctx:      ctx,
		repos:    repos,
		services: services,
		profile:  profile,
		keys:     newKeyMap(),
		now:      time.Now,
		loc:      loc,
		cursor:   map[view]int{},
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadPlan(), a.loadTasks(), a.loadBills(), a.loadMeds(), a.loadReminders(), a.loadProgress())
}

// messages
type planMsg struct {
	plan *repository.Plan
	log  service.PlanLog
}

type tasksMsg []repository.Task

type billsMsg []repository.Bill

type medsMsg []repository.Medicine

type remindersMsg []service.Reminder

type progressMsg []repository.ProgressRecord

type statusMsg string

type errMsg struct{ error }

type runDoneMsg struct {
	res service.RunResult
	err error
}

type reflectDoneMsg struct {
	report service.WeeklyReport
	err    error
}

func (a *App) loadPlan() tea.Cmd {
	return func() tea.Msg {
		if a.services.Commander == nil {
			return planMsg{}
		}
		p, err := a.services.Commander.Latest(a.ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return planMsg{}
		}
		if err != nil {
			return errMsg{err}
		}
		log, err := service.DecodePlanLog(p)
		if err != nil {
			return errMsg{err}
		}
		return planMsg{plan: &p, log: log}
	}
}

func (a *App) loadTasks() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.Tasks.List(a.ctx, repository.TaskFilters{})
		if err != nil {
			return errMsg{err}
		}
		return tasksMsg(list)
	}
}

func (a *App) loadBills() tea.Cmd {
	return func() tea.Msg {
		if a.repos.Bills == nil {
			return billsMsg(nil)
		}
		list, err := a.repos.Bills.List(a.ctx, false)
		if err != nil {
			return errMsg{err}
		}
		return billsMsg(list)
	}
}

func (a *App) loadMeds() tea.Cmd {
	return func() tea.Msg {
		if a.repos.Medicines == nil {
			return medsMsg(nil)
		}
		list, err := a.repos.Medicines.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return medsMsg(list)
	}
}

func (a *App) loadReminders() tea.Cmd {
	return func() tea.Msg {
		if a.services.Reminders == nil {
			return remindersMsg(nil)
		}
		list, err := a.services.Reminders.Due(a.ctx, 3)
		if err != nil {
			return errMsg{err}
		}
		return remindersMsg(list)
	}
}

func (a *App) loadProgress() tea.Cmd {
	return func() tea.Msg {
		if a.repos.Progress == nil {
			return progressMsg(nil)
		}
		from, to := a.progressRange()
		list, err := a.repos.Progress.List(a.ctx, from, to.AddDate(0, 0, 1))
		if err != nil {
			return errMsg{err}
		}
		return progressMsg(list)
	}
}

// progressRange returns the first and last local day shown in the chart.
func (a *App) progressRange() (time.Time, time.Time) {
	today := startOfDay(a.now().In(a.loc))
	return today.AddDate(0, 0, -(progressDays - 1)), today
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tea.KeyMsg:
		if a.adding {
			return a.handleInputKey(m)
		}
		if a.confirmReset {
			return a.handleConfirmKey(m)
		}
		return a.handleKey(m)
	case planMsg:
		a.plan, a.planLog = m.plan, m.log
	case tasksMsg:
		a.tasks = m
		a.clampCursor(viewTasks, len(a.tasks))
	case billsMsg:
		a.bills = m
		a.clampCursor(viewBills, len(a.bills))
	case medsMsg:
		a.meds = m
		a.clampCursor(viewMeds, len(a.meds))
	case remindersMsg:
		a.reminders = m
	case progressMsg:
		a.progress = m
		a.metrics = Metrics(m)
		a.clampCursor(viewProgress, len(a.metrics))
	case statusMsg:
		a.setStatus(string(m), false)
	case errMsg:
		a.busy = false
		a.setStatus(m.Error(), true)
	case runDoneMsg:
		a.busy = false
		if m.err != nil {
			a.setStatus("plan failed: "+m.err.Error(), true)
			return a, nil
		}
		status := fmt.Sprintf("plan ready: %d tasks, %d deferred", len(m.res.Plan.Tasks), len(m.res.Plan.Deferred))
		if n := len(m.res.Failures); n > 0 {
			status += fmt.Sprintf(", %d domain(s) failed", n)
		}
		a.setStatus(status, false)
		a.state = viewPlan
		return a, tea.Batch(a.loadPlan(), a.loadTasks())
	case reflectDoneMsg:
		a.busy = false
		if m.err != nil {
			a.setStatus("reflection failed: "+m.err.Error(), true)
			return a, nil
		}
		w := m.report.Week
		a.setStatus(fmt.Sprintf("week of %s: %d/%d done, %d-day streak", w.WeekStart, w.Completed, w.Total, w.Streak), false)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Next):
		a.state = (a.state + 1) % view(len(viewNames))
	case key.Matches(m, a.keys.Prev):
		a.state = (a.state + view(len(viewNames)) - 1) % view(len(viewNames))
	case key.Matches(m, a.keys.Up):
		if a.cursor[a.state] > 0 {
			a.cursor[a.state]--
		}
	case key.Matches(m, a.keys.Down):
		if a.cursor[a.state] < a.rows()-1 {
			a.cursor[a.state]++
		}
	case key.Matches(m, a.keys.Refresh):
		return a, a.Init()
	case key.Matches(m, a.keys.Reset):
		if a.services.Maintenance != nil {
			a.confirmReset = true
		}
	case key.Matches(m, a.keys.Generate):
		return a, a.generateCmd()
	case key.Matches(m, a.keys.Reflect):
		return a, a.reflectCmd()
	case key.Matches(m, a.keys.Add):
		if a.state == viewTasks {
			a.adding = true
			a.inputBuffer = ""
		}
	case key.Matches(m, a.keys.Delete):
		if a.state == viewTasks && len(a.tasks) > 0 {
			return a, a.deleteTaskCmd(a.tasks[a.cursor[viewTasks]])
		}
	case key.Matches(m, a.keys.Toggle):
		return a, a.toggleCmd()
	}
	return a, nil
}

func (a *App) handleInputKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.adding = false
		a.inputBuffer = ""
	case tea.KeyEnter:
		title := strings.TrimSpace(a.inputBuffer)
		a.adding = false
		a.inputBuffer = ""
		if title == "" {
			return a, nil
		}
		return a, a.addTaskCmd(title)
	case tea.KeyBackspace, tea.KeyCtrlH:
		if r := []rune(a.inputBuffer); len(r) > 0 {
			a.inputBuffer = string(r[:len(r)-1])
		}
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeySpace:
		a.inputBuffer += " "
	case tea.KeyRunes:
		a.inputBuffer += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleConfirmKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.confirmReset = false
	if m.String() == "y" {
		return a, a.resetCmd()
	}
	a.setStatus("reset cancelled", false)
	return a, nil
}

func (a *App) rows() int {
	switch a.state {
	case viewPlan:
		if a.plan != nil {
			return len(a.plan.Tasks)
		}
	case viewTasks:
		return len(a.tasks)
	case viewBills:
		return len(a.bills)
	case viewMeds:
		return len(a.meds)
	case viewProgress:
		return len(a.metrics)
	}
	return 0
}

func (a *App) clampCursor(v view, n int) {
	if a.cursor[v] >= n {
		a.cursor[v] = n - 1
	}
	if a.cursor[v] < 0 {
		a.cursor[v] = 0
	}
}

func (a *App) setStatus(s string, isError bool) {
	a.status, a.isError = s, isError
}

func (a *App) generateCmd() tea.Cmd {
	if a.services.Commander == nil || a.busy {
		return nil
	}
	a.busy = true
	a.setStatus("asking the agents...", false)
	return func() tea.Msg {
		res, err := a.services.Commander.Run(a.ctx, a.profile)
		return runDoneMsg{res: res, err: err}
	}
}

func (a *App) reflectCmd() tea.Cmd {
	if a.services.Reflection == nil || a.busy {
		return nil
	}
	a.busy = true
	a.setStatus("reflecting on the week...", false)
	return func() tea.Msg {
		report, err := a.services.Reflection.Weekly(a.ctx, time.Time{})
		return reflectDoneMsg{report: report, err: err}
	}
}

func (a *App) toggleCmd() tea.Cmd {
	switch a.state {
	case viewPlan:
		if a.plan == nil || len(a.plan.Tasks) == 0 {
			return nil
		}
		return a.toggleTaskCmd(a.plan.Tasks[a.cursor[viewPlan]])
	case viewTasks:
		if len(a.tasks) == 0 {
			return nil
		}
		return a.toggleTaskCmd(a.tasks[a.cursor[viewTasks]])
	case viewBills:
		if len(a.bills) == 0 {
			return nil
		}
		b := a.bills[a.cursor[viewBills]]
		return a.reload(func() error {
			if b.PaidThisMonth {
				return fmt.Errorf("%s already paid this month", b.Name)
			}
			return a.repos.Bills.MarkPaid(a.ctx, b.ID, a.now())
		}, "paid "+b.Name, a.loadBills(), a.loadReminders())
	case viewMeds:
		if len(a.meds) == 0 {
			return nil
		}
		med := a.meds[a.cursor[viewMeds]]
		return a.reload(func() error {
			return a.repos.Medicines.MarkTaken(a.ctx, med.ID, a.now())
		}, "took "+med.Name, a.loadMeds(), a.loadReminders())
	}
	return nil
}

func (a *App) toggleTaskCmd(t repository.Task) tea.Cmd {
	return a.reload(func() error {
		if t.Completed {
			return a.repos.Tasks.MarkPending(a.ctx, t.ID)
		}
		return a.repos.Tasks.MarkComplete(a.ctx, t.ID, a.now())
	}, "updated "+t.Title, a.loadTasks(), a.loadPlan())
}

func (a *App) addTaskCmd(title string) tea.Cmd {
	return a.reload(func() error {
		domain := planner.Classify(title)
		if a.services.Classifier != nil {
			domain = a.services.Classifier.Classify(a.ctx, title)
		}
		return a.repos.Tasks.Insert(a.ctx, repository.Task{
			ID:       uuid.NewString(),
			Domain:   string(domain),
			Title:    title,
			Priority: int(planner.Medium),
			Source:   repository.SourceUser,
		})
	}, "added "+title, a.loadTasks())
}

func (a *App) deleteTaskCmd(t repository.Task) tea.Cmd {
	return a.reload(func() error {
		return a.repos.Tasks.Delete(a.ctx, t.ID)
	}, "deleted "+t.Title, a.loadTasks(), a.loadPlan())
}

func (a *App) resetCmd() tea.Cmd {
	return a.reload(func() error {
		return a.services.Maintenance.Reset(a.ctx)
	}, "all data cleared", a.Init())
}

// reload runs fn and, on success, reports status and runs the loaders.
func (a *App) reload(fn func() error, status string, loaders ...tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err}
		}
		return tea.BatchMsg(append([]tea.Cmd{func() tea.Msg { return statusMsg(status) }}, loaders...))
	}
}
