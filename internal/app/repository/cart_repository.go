package repository

import (
	"context"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	AddOne(ctx context.Context, userID, productID uint) (*model.CartItem, error)
	FindByUserID(ctx context.Context, userID uint) ([]model.CartItem, error)
	FindByID(ctx context.Context, id uint) (*model.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uint) (*model.CartItem, error)
	DeleteOwned(ctx context.Context, userID, id uint) (bool, error)
	SumQuantity(ctx context.Context, userID uint) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// AddOne inserts the (user, product) line if missing and increments its quantity,
// both inside one transaction. Concurrent first adds collapse onto the unique index.
func (r *cartRepository) AddOne(ctx context.Context, userID, productID uint) (*model.CartItem, error) {
	logger.Debug("Adding one unit to cart in database", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	var item model.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &model.CartItem{UserID: userID, ProductID: productID, Quantity: 0}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).Omit("User", "Product").Create(seed).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity + ?", 1)).Error; err != nil {
			return err
		}

		return tx.Preload("Product").
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&item).Error
	})
	if err != nil {
		logger.Error("Failed to add cart item in database", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	logger.Debug("Cart item incremented in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"user_id":      userID,
		"product_id":   productID,
		"quantity":     item.Quantity,
	})
	return &item, nil
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) ([]model.CartItem, error) {
	logger.Debug("Finding cart items by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cartItems []model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Product").
		Order("id ASC").
		Find(&cartItems).Error
	if err != nil {
		logger.Error("Failed to find cart items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart items found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(cartItems),
	})
	return cartItems, nil
}

func (r *cartRepository) FindByID(ctx context.Context, id uint) (*model.CartItem, error) {
	var cartItem model.CartItem
	err := r.db.WithContext(ctx).Preload("Product").First(&cartItem, id).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart item by ID in database", err, map[string]interface{}{
				"cart_item_id": id,
			})
		}
		return nil, err
	}
	return &cartItem, nil
}

func (r *cartRepository) FindByUserAndProduct(ctx context.Context, userID, productID uint) (*model.CartItem, error) {
	var cartItem model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&cartItem).Error
	if err != nil {
		return nil, err
	}
	return &cartItem, nil
}

// DeleteOwned removes the row only when it belongs to userID.
// It reports false when nothing matched.
func (r *cartRepository) DeleteOwned(ctx context.Context, userID, id uint) (bool, error) {
	logger.Debug("Deleting cart item in database", map[string]interface{}{
		"cart_item_id": id,
		"user_id":      userID,
	})

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart item in database", result.Error, map[string]interface{}{
			"cart_item_id": id,
			"user_id":      userID,
		})
		return false, result.Error
	}

	logger.Debug("Cart item delete finished in database", map[string]interface{}{
		"cart_item_id":  id,
		"rows_affected": result.RowsAffected,
	})
	return result.RowsAffected > 0, nil
}

func (r *cartRepository) SumQuantity(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		logger.Error("Failed to sum cart quantity in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return total, nil
}
