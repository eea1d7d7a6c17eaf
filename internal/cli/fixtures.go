package cli

import (
	"fmt"
	"os"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/internal/app/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML seed file layout
type Fixtures struct {
	Users []struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
		Admin bool   `yaml:"admin"`
	} `yaml:"users"`
	Products []struct {
		Name        string `yaml:"name"`
		Price       string `yaml:"price"`
		Description string `yaml:"description"`
	} `yaml:"products"`
}

// LoadFixtures parses a fixtures document
func LoadFixtures(data []byte) (*Fixtures, []service.ProductInput, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, nil, fmt.Errorf("invalid fixtures file: %w", err)
	}

	inputs := make([]service.ProductInput, 0, len(fx.Products))
	for i, p := range fx.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, nil, fmt.Errorf("product %d: invalid price %q", i+1, p.Price)
		}
		inputs = append(inputs, service.ProductInput{
			Name:        p.Name,
			Price:       price,
			Description: p.Description,
		})
	}
	return &fx, inputs, nil
}

func newFixturesCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "fixtures <file.yaml>",
		Short: "Load users and products from a YAML fixtures file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			fx, products, err := LoadFixtures(data)
			if err != nil {
				return err
			}

			return withEnv(open, func(env *Env) error {
				ctx := cmd.Context()
				users := env.userService()
				for _, u := range fx.Users {
					role := model.RoleUser
					if u.Admin {
						role = model.RoleAdmin
					}
					if _, err := users.CreateUser(ctx, u.Email, u.Name, role); err != nil {
						return fmt.Errorf("user %s: %w", u.Email, err)
					}
				}

				imported, err := env.productService().Import(ctx, products)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d users and %d products\n", len(fx.Users), imported)
				return nil
			})
		},
	}
}
