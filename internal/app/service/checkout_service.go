package service

import (
	"context"

	"github.com/deqistore/deqistore-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// CheckoutLine is one cart line priced at the current catalog price
type CheckoutLine struct {
	CartItemID uint            `json:"cart_item_id"`
	ProductID  uint            `json:"product_id"`
	Name       string          `json:"name"`
	ImageURL   string          `json:"image_url"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type CheckoutSummary struct {
	Items     []CheckoutLine  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int64           `json:"item_count"`
}

// CheckoutService projects the live cart into a summary. It never mutates state.
type CheckoutService interface {
	Summary(ctx context.Context, userID uint) (*CheckoutSummary, error)
}

type checkoutService struct {
	cartService CartService
}

func NewCheckoutService(cartService CartService) CheckoutService {
	return &checkoutService{cartService: cartService}
}

func (s *checkoutService) Summary(ctx context.Context, userID uint) (*CheckoutSummary, error) {
	items, err := s.cartService.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &CheckoutSummary{
		Items: make([]CheckoutLine, 0, len(items)),
		Total: sumSubtotals(items),
	}
	for i := range items {
		item := &items[i]
		summary.Items = append(summary.Items, CheckoutLine{
			CartItemID: item.ID,
			ProductID:  item.ProductID,
			Name:       item.Product.Name,
			ImageURL:   item.Product.ImageURL,
			UnitPrice:  item.Product.Price,
			Quantity:   item.Quantity,
			Subtotal:   item.Subtotal(),
		})
		summary.ItemCount += int64(item.Quantity)
	}

	logger.Debug("Checkout summary built", map[string]interface{}{
		"user_id":    userID,
		"lines":      len(summary.Items),
		"item_count": summary.ItemCount,
		"total":      summary.Total.StringFixed(2),
	})
	return summary, nil
}
