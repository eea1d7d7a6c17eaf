package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/internal/app/repository"
	"github.com/deqistore/deqistore-backend/internal/cache"
	apperrors "github.com/deqistore/deqistore-backend/internal/errors"
	"github.com/deqistore/deqistore-backend/internal/storage"
	"github.com/deqistore/deqistore-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// DefaultMaxImageBytes is the upload limit when none is configured (2048 KiB)
const DefaultMaxImageBytes int64 = 2048 * 1024

// InvalidInputError carries per-field messages for rejected product data
type InvalidInputError struct {
	Fields map[string]string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %d field(s) rejected", len(e.Fields))
}

// ProductInput is the editable part of a product
type ProductInput struct {
	Name        string `validate:"required,max=255"`
	Price       decimal.Decimal
	Description string
}

type ProductService interface {
	Search(ctx context.Context, query string) ([]model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	Create(ctx context.Context, input ProductInput, image *storage.Upload) (*model.Product, error)
	Update(ctx context.Context, id uint, input ProductInput, image *storage.Upload) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
	Import(ctx context.Context, inputs []ProductInput) (int, error)
}

type productService struct {
	productRepo   repository.ProductRepository
	images        storage.ImageStore
	maxImageBytes int64
	countCache    cache.CountCache
}

func NewProductService(
	productRepo repository.ProductRepository,
	images storage.ImageStore,
	maxImageBytes int64,
	countCache ...cache.CountCache,
) ProductService {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	var cc cache.CountCache
	if len(countCache) > 0 {
		cc = countCache[0]
	}
	return &productService{
		productRepo:   productRepo,
		images:        images,
		maxImageBytes: maxImageBytes,
		countCache:    cc,
	}
}

var inputValidator = validator.New()

func (s *productService) Search(ctx context.Context, query string) ([]model.Product, error) {
	products, err := s.productRepo.Search(ctx, query)
	if err != nil {
		logger.Error("Failed to search products", err, map[string]interface{}{
			"search": query,
		})
		return nil, err
	}

	for i := range products {
		resolveImageURL(s.images, &products[i])
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	resolveImageURL(s.images, product)
	return product, nil
}

func (s *productService) Create(ctx context.Context, input ProductInput, image *storage.Upload) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":      input.Name,
		"has_image": image != nil,
	})

	if err := s.validate(input, image); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
	}

	if image != nil {
		key, err := s.images.Save(ctx, storage.ProductImageFolder, *image)
		if err != nil {
			logger.Error("Failed to store product image", err, map[string]interface{}{
				"filename": image.Filename,
			})
			return nil, err
		}
		product.Image = key
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if product.HasImage() {
			s.deleteImage(ctx, product.Image)
		}
		return nil, err
	}

	logger.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	resolveImageURL(s.images, product)
	return product, nil
}

// Update replaces the product's fields. A new image replaces the stored one:
// the old file is removed before the new one is written and the row saved.
func (s *productService) Update(ctx context.Context, id uint, input ProductInput, image *storage.Upload) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
		"has_image":  image != nil,
	})

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot update: product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := s.validate(input, image); err != nil {
		return nil, err
	}

	if image != nil {
		if product.HasImage() {
			s.deleteImage(ctx, product.Image)
		}
		key, err := s.images.Save(ctx, storage.ProductImageFolder, *image)
		if err != nil {
			logger.Error("Failed to store product image", err, map[string]interface{}{
				"product_id": id,
				"filename":   image.Filename,
			})
			return nil, err
		}
		product.Image = key
	}

	product.Name = input.Name
	product.Price = input.Price
	product.Description = input.Description

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	logger.Info("Product updated successfully", map[string]interface{}{
		"product_id": product.ID,
	})
	resolveImageURL(s.images, product)
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	affectedUsers, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if s.countCache != nil {
		for _, userID := range affectedUsers {
			if err := s.countCache.Invalidate(ctx, userID); err != nil {
				logger.Warn("Failed to invalidate cart count", map[string]interface{}{
					"user_id": userID,
					"error":   err.Error(),
				})
			}
		}
	}

	if product.HasImage() {
		s.deleteImage(ctx, product.Image)
	}

	logger.Info("Product deleted successfully", map[string]interface{}{
		"product_id":     id,
		"affected_carts": len(affectedUsers),
	})
	return nil
}

// Import validates every row before inserting any of them.
func (s *productService) Import(ctx context.Context, inputs []ProductInput) (int, error) {
	products := make([]model.Product, 0, len(inputs))
	for i, input := range inputs {
		if err := s.validate(input, nil); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		products = append(products, model.Product{
			Name:        input.Name,
			Price:       input.Price,
			Description: input.Description,
		})
	}

	if err := s.productRepo.BulkCreate(ctx, products); err != nil {
		return 0, err
	}

	logger.Info("Products imported", map[string]interface{}{
		"count": len(products),
	})
	return len(products), nil
}

func (s *productService) validate(input ProductInput, image *storage.Upload) error {
	fields := apperrors.ValidationFields(inputValidator.Struct(input))
	if fields == nil {
		fields = map[string]string{}
	}

	if input.Price.IsNegative() {
		fields["price"] = "The price must be at least 0."
	}

	if image != nil {
		err := storage.ValidateImage(*image, s.maxImageBytes)
		switch {
		case errors.Is(err, storage.ErrUnsupportedImageType):
			fields["image"] = "The image must be a file of type: jpg, jpeg, png."
		case errors.Is(err, storage.ErrImageTooLarge):
			fields["image"] = fmt.Sprintf("The image may not be greater than %d kilobytes.", s.maxImageBytes/1024)
		}
	}

	if len(fields) > 0 {
		logger.Warn("Product input rejected", map[string]interface{}{
			"fields": fields,
		})
		return &InvalidInputError{Fields: fields}
	}
	return nil
}

func (s *productService) deleteImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		logger.Warn("Failed to delete product image", map[string]interface{}{
			"image": key,
			"error": err.Error(),
		})
	}
}

// resolveImageURL fills the computed image_url, falling back to the placeholder.
func resolveImageURL(images storage.ImageStore, product *model.Product) {
	switch {
	case !product.HasImage():
		product.ImageURL = model.PlaceholderImageURL
	case images == nil:
		product.ImageURL = product.Image
	default:
		product.ImageURL = images.URL(product.Image)
	}
}
