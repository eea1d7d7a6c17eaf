package repository

import (
	"context"
	"strings"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	BulkCreate(ctx context.Context, products []model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	Search(ctx context.Context, query string) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) ([]uint, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

const bulkCreateBatchSize = 100

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
	})

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) BulkCreate(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(products, bulkCreateBatchSize).Error; err != nil {
		logger.Error("Failed to bulk create products in database", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}

	logger.Info("Products bulk created in database", map[string]interface{}{
		"count": len(products),
	})
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

// Search matches query as a case-insensitive substring of the name.
// LIKE wildcards in query match literally. An empty query returns every product.
func (r *productRepository) Search(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	logger.Debug("Searching products in database", map[string]interface{}{
		"search": query,
	})

	db := r.db.WithContext(ctx).Model(&model.Product{})
	if query != "" {
		db = db.Where("LOWER(name) LIKE LOWER(?) ESCAPE '\\'", "%"+escapeLike(query)+"%")
	}

	var products []model.Product
	if err := db.Order("id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to search products in database", err, map[string]interface{}{
			"search": query,
		})
		return nil, err
	}

	logger.Debug("Products found in database", map[string]interface{}{
		"search": query,
		"count":  len(products),
	})
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// Delete removes the product and every cart line referencing it. It returns
// the users whose carts lost a line.
func (r *productRepository) Delete(ctx context.Context, id uint) ([]uint, error) {
	logger.Debug("Deleting product in database", map[string]interface{}{
		"product_id": id,
	})

	var userIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.CartItem{}).
			Where("product_id = ?", id).
			Pluck("user_id", &userIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Product{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to delete product in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id":     id,
		"affected_users": len(userIDs),
	})
	return userIDs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
