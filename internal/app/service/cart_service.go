package service

import (
	"context"
	"errors"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/internal/app/repository"
	"github.com/deqistore/deqistore-backend/internal/cache"
	"github.com/deqistore/deqistore-backend/internal/storage"
	"github.com/deqistore/deqistore-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

type CartService interface {
	Add(ctx context.Context, userID, productID uint) (*model.CartItem, error)
	Remove(ctx context.Context, userID, cartItemID uint) error
	Count(ctx context.Context, userID uint) (int64, error)
	List(ctx context.Context, userID uint) ([]model.CartItem, error)
	Total(ctx context.Context, userID uint) (decimal.Decimal, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	images      storage.ImageStore
	countCache  cache.CountCache
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	images storage.ImageStore,
	countCache ...cache.CountCache,
) CartService {
	var cc cache.CountCache
	if len(countCache) > 0 {
		cc = countCache[0]
	}
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		images:      images,
		countCache:  cc,
	}
}

// Add puts one more unit of the product into the user's cart.
func (s *cartService) Add(ctx context.Context, userID, productID uint) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	item, err := s.cartRepo.AddOne(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	s.invalidateCount(ctx, userID)

	resolveImageURL(s.images, &item.Product)
	logger.Info("Item added to cart successfully", map[string]interface{}{
		"user_id":      userID,
		"product_id":   productID,
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})
	return item, nil
}

// Remove deletes a cart line owned by userID. Lines of other users are
// reported as not found.
func (s *cartService) Remove(ctx context.Context, userID, cartItemID uint) error {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})

	deleted, err := s.cartRepo.DeleteOwned(ctx, userID, cartItemID)
	if err != nil {
		return err
	}
	if !deleted {
		logger.Warn("Cannot remove: cart item not found for user", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		return ErrCartItemNotFound
	}
	s.invalidateCount(ctx, userID)

	logger.Info("Item removed from cart successfully", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})
	return nil
}

// Count is the number of units in the cart, served from the count cache when warm.
func (s *cartService) Count(ctx context.Context, userID uint) (int64, error) {
	if s.countCache != nil {
		n, err := s.countCache.Get(ctx, userID)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("Cart count cache read failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}

	n, err := s.cartRepo.SumQuantity(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.countCache != nil {
		if err := s.countCache.Set(ctx, userID, n); err != nil {
			logger.Warn("Cart count cache write failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return n, nil
}

func (s *cartService) List(ctx context.Context, userID uint) ([]model.CartItem, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	items, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	for i := range items {
		resolveImageURL(s.images, &items[i].Product)
	}
	return items, nil
}

func (s *cartService) Total(ctx context.Context, userID uint) (decimal.Decimal, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumSubtotals(items), nil
}

func sumSubtotals(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Subtotal())
	}
	return total
}

func (s *cartService) invalidateCount(ctx context.Context, userID uint) {
	if s.countCache == nil {
		return
	}
	if err := s.countCache.Invalidate(ctx, userID); err != nil {
		logger.Warn("Failed to invalidate cart count", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
