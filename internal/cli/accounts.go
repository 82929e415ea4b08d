package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
)

func setupAdminCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup-admin",
		Short: "Create or reset the administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupAdmin(cmd.Context())
		},
	}
}

func (a *app) setupAdmin(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("setup-admin: %w", err)
	}
	defer closeStore()

	accounts := service.NewAccountService(store, a.log)
	user, created, err := accounts.EnsureAdmin(ctx, service.AdminSpec{
		Username: a.cfg.AdminUsername,
		Email:    a.cfg.AdminEmail,
		Password: a.cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("setup-admin: %w", err)
	}
	if created {
		a.log.Infof("Admin user %q created", user.Username)
	} else {
		a.log.Infof("Admin user %q updated", user.Username)
	}
	return nil
}

func createUserCmd(a *app) *cobra.Command {
	var in service.NewUser
	var role string

	cmd := &cobra.Command{
		Use:   "create-user USERNAME EMAIL PASSWORD",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in.Username, in.Email, in.Password = args[0], args[1], args[2]
			in.Role = domain.Role(role)

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			user, err := service.NewAccountService(store, a.log).CreateUser(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %q created with role %s\n", user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleOperative), "role: AD, EX or OP")
	return cmd
}
