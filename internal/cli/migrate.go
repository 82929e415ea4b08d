package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rl1809/mestakip/internal/adapter/storage/migrations"
)

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.migrate(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := migrations.Version(cmd.Context(), a.cfg.DatabaseURL, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", st.Version, st.Dirty)
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migrations.Down(cmd.Context(), a.cfg.DatabaseURL, steps, a.log); err != nil {
				return err
			}
			a.log.Infof("Rolled back %d migration(s)", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}

func (a *app) migrate(ctx context.Context) error {
	st, err := migrations.Up(ctx, a.cfg.DatabaseURL, a.log)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if st.Applied {
		a.log.Infof("Migrated schema to version %d", st.Version)
	} else {
		a.log.Infof("Schema is up to date at version %d", st.Version)
	}
	return nil
}
