package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/product_catalog/internal/service"
)

type userFlags struct {
	email    string
	username string
	password string
	first    string
	last     string
	staff    bool
}

func (f *userFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "email address used to log in")
	cmd.Flags().StringVar(&f.username, "username", "", "unique username")
	cmd.Flags().StringVar(&f.password, "password", "", "password; empty leaves the account without a usable password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
}

func newCreateSuperuserCmd(a *app) *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff superuser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			users, err := a.users()
			if err != nil {
				return err
			}
			u, err := users.CreateSuperuser(ctx, f.email, f.username, f.password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created with id %d\n", u, u.ID)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newCreateUserCmd(a *app) *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create a regular or staff user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			users, err := a.users()
			if err != nil {
				return err
			}
			u, err := users.CreateUser(ctx, service.NewUser{
				Email:     f.email,
				Username:  f.username,
				Password:  f.password,
				FirstName: f.first,
				LastName:  f.last,
				IsStaff:   f.staff,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s created with id %d\n", u, u.ID)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&f.first, "first-name", "", "first name")
	cmd.Flags().StringVar(&f.last, "last-name", "", "last name")
	cmd.Flags().BoolVar(&f.staff, "staff", false, "mark the user as staff")
	return cmd
}

func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(id), nil
}

func newGrantCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "grant <user-id> <permission>...",
		Short:   "Grant permissions to a user",
		Example: "  catalogctl grant 7 products.add_product products.change_product",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			users, err := a.users()
			if err != nil {
				return err
			}
			if err := users.GrantPermissions(ctx, id, args[1:]...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %d permission(s) to user %d\n", len(args)-1, id)
			return nil
		},
	}
}

func newDeleteUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteuser <user-id>",
		Short: "Delete a user; their products are kept without an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			users, err := a.users()
			if err != nil {
				return err
			}
			if err := users.DeleteUser(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d deleted\n", id)
			return nil
		},
	}
}
