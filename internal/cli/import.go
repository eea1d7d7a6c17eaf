package cli

import (
	"fmt"
	"os"

	"github.com/deqistore/deqistore-backend/internal/spreadsheet"
	"github.com/spf13/cobra"
)

func newImportCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Bulk import products from a spreadsheet",
		Long:  "Reads the first sheet of an XLSX workbook. The header row must contain name and price; description is optional.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			result, err := spreadsheet.ReadProducts(f)
			if err != nil {
				return err
			}

			return withEnv(open, func(env *Env) error {
				imported, err := env.productService().Import(cmd.Context(), result.Products)
				if err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products (%d rows skipped)\n", imported, result.Skipped)
				return nil
			})
		},
	}
}
