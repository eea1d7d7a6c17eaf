package service

import (
	"context"
	"testing"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/internal/app/repository"
	"github.com/deqistore/deqistore-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutService_Summary(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cartService := NewCartService(repository.NewCartRepository(testDB), repository.NewProductRepository(testDB), nil)
	checkoutService := NewCheckoutService(cartService)
	ctx := context.Background()

	user := &model.User{Email: "buyer@example.com", Name: "Buyer", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	shirt := &model.Product{Name: "Shirt", Price: decimal.RequireFromString("19.99")}
	socks := &model.Product{Name: "Socks", Price: decimal.RequireFromString("4.50")}
	require.NoError(t, testDB.Create(shirt).Error)
	require.NoError(t, testDB.Create(socks).Error)

	t.Run("Empty cart", func(t *testing.T) {
		summary, err := checkoutService.Summary(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, summary.Items)
		assert.True(t, summary.Total.IsZero())
		assert.Equal(t, int64(0), summary.ItemCount)
	})

	for i := 0; i < 2; i++ {
		_, err := cartService.Add(ctx, user.ID, shirt.ID)
		require.NoError(t, err)
	}
	_, err = cartService.Add(ctx, user.ID, socks.ID)
	require.NoError(t, err)

	t.Run("Lines and total", func(t *testing.T) {
		summary, err := checkoutService.Summary(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, summary.Items, 2)

		assert.Equal(t, "Shirt", summary.Items[0].Name)
		assert.Equal(t, 2, summary.Items[0].Quantity)
		assert.Equal(t, "39.98", summary.Items[0].Subtotal.StringFixed(2))
		assert.Equal(t, model.PlaceholderImageURL, summary.Items[0].ImageURL)
		assert.Equal(t, "44.48", summary.Total.StringFixed(2))
		assert.Equal(t, int64(3), summary.ItemCount)
	})

	t.Run("Summary does not change the cart", func(t *testing.T) {
		_, err := checkoutService.Summary(ctx, user.ID)
		require.NoError(t, err)

		count, err := cartService.Count(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
