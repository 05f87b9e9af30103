package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/lifeops/internal/service"
	"github.com/jask/lifeops/internal/testdata"
)

var (
	resetYes bool
	seedSeed int64
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all data and restore the default domains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !resetYes && !promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete ALL tasks, plans, bills, medicines, notes and progress?") {
			return fmt.Errorf("reset cancelled by user")
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := (&service.MaintenanceService{DB: a.db}).Reset(ctx); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "All data cleared")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with two weeks of sample data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		repos := testdata.Repos{
			Tasks:     a.tasks,
			Bills:     a.bills,
			Medicines: a.medicines,
			Notes:     a.notes,
			Study:     a.study,
			Progress:  a.progress,
		}
		if err := testdata.Seed(ctx, repos, a.now(), seedSeed); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Seeded sample data")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 1, "Random seed")
}
