package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/internal/app/repository"
	"github.com/deqistore/deqistore-backend/internal/db"
	"github.com/deqistore/deqistore-backend/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (ProductService, *storage.LocalStorage, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	images, err := storage.NewLocalStorage(t.TempDir(), "/storage")
	require.NoError(t, err)

	productService := NewProductService(repository.NewProductRepository(testDB), images, 1024)
	return productService, images, testDB
}

func pngUpload(name string, size int) *storage.Upload {
	return imageUpload(name, "image/png", size)
}

func imageUpload(name, contentType string, size int) *storage.Upload {
	return &storage.Upload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(size),
		Body:        bytes.NewReader(make([]byte, size)),
	}
}

func TestProductService_CreateAndGet(t *testing.T) {
	productService, images, _ := setupProductServiceTest(t)
	ctx := context.Background()

	t.Run("Without image uses placeholder", func(t *testing.T) {
		product, err := productService.Create(ctx, ProductInput{
			Name:  "Plain Tee",
			Price: decimal.RequireFromString("9.99"),
		}, nil)
		require.NoError(t, err)
		assert.Empty(t, product.Image)
		assert.Equal(t, model.PlaceholderImageURL, product.ImageURL)

		found, err := productService.Get(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PlaceholderImageURL, found.ImageURL)
	})

	t.Run("With image stores file", func(t *testing.T) {
		product, err := productService.Create(ctx, ProductInput{
			Name:  "Graphic Tee",
			Price: decimal.NewFromInt(15),
		}, pngUpload("front.PNG", 64))
		require.NoError(t, err)
		require.NotEmpty(t, product.Image)
		assert.True(t, strings.HasPrefix(product.Image, storage.ProductImageFolder+"/"))
		assert.True(t, strings.HasSuffix(product.Image, ".png"))
		assert.Equal(t, "/storage/"+product.Image, product.ImageURL)

		exists, err := images.Exists(ctx, product.Image)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestProductService_GetMissing(t *testing.T) {
	productService, _, _ := setupProductServiceTest(t)

	_, err := productService.Get(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_CreateValidation(t *testing.T) {
	productService, _, _ := setupProductServiceTest(t)

	tests := []struct {
		name       string
		input      ProductInput
		image      *storage.Upload
		wantFields []string
	}{
		{
			name:       "Missing name",
			input:      ProductInput{Price: decimal.NewFromInt(1)},
			wantFields: []string{"name"},
		},
		{
			name:       "Name too long",
			input:      ProductInput{Name: strings.Repeat("x", 256), Price: decimal.NewFromInt(1)},
			wantFields: []string{"name"},
		},
		{
			name:       "Negative price",
			input:      ProductInput{Name: "Hat", Price: decimal.NewFromInt(-1)},
			wantFields: []string{"price"},
		},
		{
			name:       "Wrong image type",
			input:      ProductInput{Name: "Hat", Price: decimal.NewFromInt(1)},
			image:      &storage.Upload{Filename: "hat.gif", ContentType: "image/gif", Size: 10, Body: bytes.NewReader(nil)},
			wantFields: []string{"image"},
		},
		{
			name:       "Image too large",
			input:      ProductInput{Name: "Hat", Price: decimal.NewFromInt(1)},
			image:      pngUpload("hat.png", 2048),
			wantFields: []string{"image"},
		},
		{
			name:       "Several problems",
			input:      ProductInput{Price: decimal.NewFromInt(-5)},
			wantFields: []string{"name", "price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := productService.Create(context.Background(), tt.input, tt.image)

			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Len(t, invalid.Fields, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, invalid.Fields, field)
			}
		})
	}
}

func TestProductService_UpdateReplacesImage(t *testing.T) {
	productService, images, _ := setupProductServiceTest(t)
	ctx := context.Background()

	product, err := productService.Create(ctx, ProductInput{
		Name:  "Cap",
		Price: decimal.NewFromInt(20),
	}, pngUpload("cap.png", 32))
	require.NoError(t, err)
	oldKey := product.Image

	updated, err := productService.Update(ctx, product.ID, ProductInput{
		Name:        "Blue Cap",
		Price:       decimal.RequireFromString("22.50"),
		Description: "Now in blue",
	}, imageUpload("cap-blue.jpg", "image/jpeg", 32))
	require.NoError(t, err)

	assert.Equal(t, "Blue Cap", updated.Name)
	assert.Equal(t, "Now in blue", updated.Description)
	assert.NotEqual(t, oldKey, updated.Image)

	oldExists, err := images.Exists(ctx, oldKey)
	require.NoError(t, err)
	assert.False(t, oldExists)

	newExists, err := images.Exists(ctx, updated.Image)
	require.NoError(t, err)
	assert.True(t, newExists)
}

func TestProductService_UpdateKeepsImageWhenNoneGiven(t *testing.T) {
	productService, _, _ := setupProductServiceTest(t)
	ctx := context.Background()

	product, err := productService.Create(ctx, ProductInput{Name: "Scarf", Price: decimal.NewFromInt(30)}, pngUpload("scarf.png", 16))
	require.NoError(t, err)

	updated, err := productService.Update(ctx, product.ID, ProductInput{Name: "Wool Scarf", Price: decimal.NewFromInt(35)}, nil)
	require.NoError(t, err)
	assert.Equal(t, product.Image, updated.Image)

	_, err = productService.Update(ctx, 9999, ProductInput{Name: "Ghost", Price: decimal.NewFromInt(1)}, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteRemovesCartLinesAndImage(t *testing.T) {
	productService, images, testDB := setupProductServiceTest(t)
	ctx := context.Background()

	user := &model.User{Email: "buyer@example.com", Name: "Buyer", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	product, err := productService.Create(ctx, ProductInput{Name: "Belt", Price: decimal.NewFromInt(18)}, pngUpload("belt.png", 16))
	require.NoError(t, err)

	_, err = repository.NewCartRepository(testDB).AddOne(ctx, user.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, productService.Delete(ctx, product.ID))

	_, err = productService.Get(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var lines int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&lines)
	assert.Zero(t, lines)

	exists, err := images.Exists(ctx, product.Image)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, productService.Delete(ctx, product.ID), ErrProductNotFound)
}

func TestProductService_SearchFillsImageURL(t *testing.T) {
	productService, _, _ := setupProductServiceTest(t)
	ctx := context.Background()

	_, err := productService.Create(ctx, ProductInput{Name: "Red Shirt", Price: decimal.NewFromInt(10)}, nil)
	require.NoError(t, err)
	_, err = productService.Create(ctx, ProductInput{Name: "Jeans", Price: decimal.NewFromInt(40)}, nil)
	require.NoError(t, err)

	products, err := productService.Search(ctx, "SHIRT")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Red Shirt", products[0].Name)
	assert.Equal(t, model.PlaceholderImageURL, products[0].ImageURL)
}

func TestProductService_Import(t *testing.T) {
	productService, _, _ := setupProductServiceTest(t)
	ctx := context.Background()

	n, err := productService.Import(ctx, []ProductInput{
		{Name: "A", Price: decimal.NewFromInt(1)},
		{Name: "B", Price: decimal.NewFromInt(2), Description: "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = productService.Import(ctx, []ProductInput{
		{Name: "C", Price: decimal.NewFromInt(3)},
		{Name: "", Price: decimal.NewFromInt(4)},
	})
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "row 2")

	all, err := productService.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
