package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"study-planner/internal/repository"
	"study-planner/internal/service"
)

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute planner and calendar counters from their plans",
		Long: `Recompute every planner's and calendar's study time and completed count
from the plans beneath them, repair the rows that drifted, and print a summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(rootOpts)
			if err != nil {
				return err
			}
			defer rt.close()

			reconciler := service.NewReconcileService(repository.NewStore(rt.db), rt.log)
			report, err := reconciler.Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "planners: %d checked, %d repaired\ncalendars: %d checked, %d repaired\nstudies: %d checked, %d repaired\n",
				report.PlannersChecked, report.PlannersRepaired,
				report.CalendarsChecked, report.CalendarsRepaired,
				report.StudiesChecked, report.StudiesRepaired)
			return nil
		},
	}
}
