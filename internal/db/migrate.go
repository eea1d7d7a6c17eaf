package db

import (
	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the storefront, parents first
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Product{},
		&model.CartItem{},
	}
}

// Migrate runs AutoMigrate on the global connection
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs AutoMigrate on conn
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
