package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/service"
	"github.com/jask/lifeops/internal/tui"
)

var uiOffline bool

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.rolloverBills(ctx); err != nil {
			return err
		}
		profile, err := loadProfile("", a.now())
		if err != nil {
			return err
		}
		p, err := a.provider(ctx, uiOffline)
		if err != nil {
			return err
		}

		repos := tui.Repos{Tasks: a.tasks, Bills: a.bills, Medicines: a.medicines, Progress: a.progress}
		services := tui.Services{
			Commander:   a.commander(p),
			Reflection:  a.reflection(p),
			Classifier:  &service.Classifier{Provider: p, Log: a.log},
			Reminders:   a.reminders(),
			Maintenance: &service.MaintenanceService{DB: a.db},
		}
		prog := tea.NewProgram(tui.New(ctx, repos, services, profile, a.loc),
			tea.WithAltScreen(), tea.WithContext(ctx))
		_, err = prog.Run()
		return err
	},
}

func init() {
	uiCmd.Flags().BoolVar(&uiOffline, "offline", false, "Use the built-in rule-based agents instead of the LLM")
}
