package cli

import (
	"fmt"

	"tracker/internal/config"
	"tracker/internal/store"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables",
		Long: `Create every table the API needs if it does not exist yet.
Running it against an up-to-date database changes nothing.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(rootOpts *RootOptions, cmd *cobra.Command) error {
	env, err := config.LoadEnv(rootOpts.ConfigPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, dialect, err := config.OpenDB(ctx, env)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(ctx, db, dialect); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", dialect)
	return nil
}
