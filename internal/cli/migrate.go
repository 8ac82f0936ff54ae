package cli

import (
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the database runs the migrations.
			rt, err := setup(rootOpts)
			if err != nil {
				return err
			}
			defer rt.close()

			rt.log.Info("database migrated")
			return nil
		},
	}
}
