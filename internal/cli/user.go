package cli

import (
	"fmt"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/spf13/cobra"
)

func newUserCmd(open Opener) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var (
		email string
		name  string
		admin bool
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role := model.RoleUser
			if admin {
				role = model.RoleAdmin
			}
			return withEnv(open, func(env *Env) error {
				user, err := env.userService().CreateUser(cmd.Context(), email, name, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %d <%s>\n", user.Role, user.ID, user.Email)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&email, "email", "", "email address")
	createCmd.Flags().StringVar(&name, "name", "", "display name")
	createCmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("name")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func newTokenCmd(open Opener) *cobra.Command {
	var userID uint
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(open, func(env *Env) error {
				token, err := env.userService().IssueToken(cmd.Context(), userID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	tokenCmd.Flags().UintVar(&userID, "user-id", 0, "user ID")
	_ = tokenCmd.MarkFlagRequired("user-id")
	return tokenCmd
}
