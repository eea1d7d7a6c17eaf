package cli

import (
	"fmt"

	"github.com/deqistore/deqistore-backend/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the storefront tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(open, func(env *Env) error {
				if err := db.MigrateDB(env.DB); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(db.Models()))
				return nil
			})
		},
	}
}
