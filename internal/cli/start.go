package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type step struct {
	name string
	run  func(context.Context) error
}

// runSteps runs steps in order and stops at the first failure.
func runSteps(ctx context.Context, log logrus.FieldLogger, steps []step) error {
	for _, s := range steps {
		log.Infof("==> %s", s.name)
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func startCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Migrate, set up the administrator, then serve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSteps(cmd.Context(), a.log, []step{
				{name: "migrate", run: a.migrate},
				{name: "setup-admin", run: a.setupAdmin},
				{name: "serve", run: a.serve},
			})
		},
	}
}
