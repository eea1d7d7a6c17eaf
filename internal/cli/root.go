package cli

import (
	"github.com/deqistore/deqistore-backend/config"
	"github.com/deqistore/deqistore-backend/internal/app/repository"
	"github.com/deqistore/deqistore-backend/internal/app/service"
	"github.com/deqistore/deqistore-backend/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Env is what every storectl command runs against
type Env struct {
	Config *config.Config
	DB     *gorm.DB
}

func (e *Env) productService() service.ProductService {
	// Imported rows never carry images, so no image store is needed.
	return service.NewProductService(repository.NewProductRepository(e.DB), nil, e.Config.Storage.MaxImageBytes)
}

func (e *Env) userService() service.UserService {
	return service.NewUserService(repository.NewUserRepository(e.DB), e.Config.JWT.Secret, e.Config.JWT.AccessTokenExpiry)
}

// Opener connects to the store. The returned func releases the connection.
type Opener func() (*Env, func(), error)

// DefaultOpener loads configuration from the environment and opens the configured database
func DefaultOpener() (*Env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(&cfg.Database); err != nil {
		return nil, nil, err
	}
	release := func() {
		_ = db.Close()
	}
	return &Env{Config: cfg, DB: db.GetDB()}, release, nil
}

// NewRootCmd builds the storectl command tree
func NewRootCmd(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "storectl",
		Short:         "DeqiStore administration tool",
		Long:          "storectl migrates the storefront database, imports catalog data and manages users",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(open),
		newImportCmd(open),
		newFixturesCmd(open),
		newUserCmd(open),
		newTokenCmd(open),
	)
	return rootCmd
}

// Execute runs storectl against the configured environment
func Execute() error {
	return NewRootCmd(DefaultOpener).Execute()
}

func withEnv(open Opener, fn func(env *Env) error) error {
	env, release, err := open()
	if err != nil {
		return err
	}
	defer release()
	return fn(env)
}
