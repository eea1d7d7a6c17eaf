package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deqistore/deqistore-backend/internal/app/service"
	apperrors "github.com/deqistore/deqistore-backend/internal/errors"
	"github.com/deqistore/deqistore-backend/internal/middleware"
	"github.com/deqistore/deqistore-backend/internal/spreadsheet"
	"github.com/deqistore/deqistore-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductController is the admin side of the catalog
type ProductController struct {
	productService service.ProductService
	respond        *Responder
}

func NewProductController(productService service.ProductService, respond *Responder) *ProductController {
	return &ProductController{
		productService: productService,
		respond:        respond,
	}
}

// ProductRequest binds multipart, urlencoded and JSON bodies alike.
// The optional image travels as the multipart file "image".
type ProductRequest struct {
	Name        string      `form:"name" json:"name" binding:"required,max=255"`
	Price       json.Number `form:"price" json:"price" binding:"required,numeric"`
	Description string      `form:"description" json:"description"`
}

// GetAllProducts returns the whole catalog
// GET /products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.Search(c.Request.Context(), "")
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"flash":    ctrl.respond.PendingFlash(c),
	})
}

// ExportProducts downloads the catalog as an XLSX workbook
// GET /products/export
func (ctrl *ProductController) ExportProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.Search(c.Request.Context(), "")
	if err != nil {
		log.Error("Failed to fetch products for export", err, nil)
		apperrors.InternalError(c, "Failed to export products")
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", spreadsheet.ContentType)
	c.Status(http.StatusOK)

	if err := spreadsheet.ExportProducts(c.Writer, products); err != nil {
		log.Error("Failed to write product export", err, map[string]interface{}{
			"count": len(products),
		})
		return
	}

	log.Info("Products exported", map[string]interface{}{
		"count": len(products),
	})
}

// GetProductByID returns a product for the edit form
// GET /products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": c.Param("id"),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	product, err := ctrl.productService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct creates a product with an optional image
// POST /products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	input, image, ok := ctrl.bindProduct(c)
	if !ok {
		return
	}
	if image != nil {
		defer image.close()
	}

	product, err := ctrl.productService.Create(c.Request.Context(), input, image.upload())
	if err != nil {
		ctrl.failProduct(c, err, "create", 0)
		return
	}

	ctrl.respond.Success(c, http.StatusCreated, "Product created successfully.", gin.H{
		"product": product,
	})
}

// UpdateProduct updates a product; a new image replaces the stored one
// PUT /products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.ValidationInvalidID, "Invalid product ID.", nil)
		return
	}

	input, image, ok := ctrl.bindProduct(c)
	if !ok {
		return
	}
	if image != nil {
		defer image.close()
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, input, image.upload())
	if err != nil {
		ctrl.failProduct(c, err, "update", id)
		return
	}

	ctrl.respond.Success(c, http.StatusOK, "Product updated successfully.", gin.H{
		"product": product,
	})
}

// DeleteProduct deletes a product and its cart lines
// DELETE /products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.ValidationInvalidID, "Invalid product ID.", nil)
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		ctrl.failProduct(c, err, "delete", id)
		return
	}

	ctrl.respond.Success(c, http.StatusOK, "Product deleted successfully.", nil)
}

func (ctrl *ProductController) failProduct(c *gin.Context, err error, action string, id uint) {
	var invalid *service.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.ValidationInvalidInput, "The given data was invalid", invalid.Fields)
	case errors.Is(err, service.ErrProductNotFound):
		ctrl.respond.Fail(c, http.StatusNotFound, apperrors.ProductNotFound, "Product not found.", nil)
	default:
		middleware.GetLoggerFromContext(c).Error("Product mutation failed", err, map[string]interface{}{
			"product_id": id,
			"action":     action,
		})
		info := apperrors.ParseError(err, action+" product")
		ctrl.respond.Fail(c, info.Status(), info.Code, info.Message, nil)
	}
}

// bindProduct reads the product fields and the optional image file. It writes
// the error response itself and reports false when the request is unusable.
func (ctrl *ProductController) bindProduct(c *gin.Context) (service.ProductInput, *imageFile, bool) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid product request", map[string]interface{}{
			"error": err.Error(),
		})
		if fields := apperrors.ValidationFields(err); fields != nil {
			ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.ValidationInvalidInput, "The given data was invalid", fields)
		} else {
			ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.ValidationInvalidInput, "The request body could not be read.", nil)
		}
		return service.ProductInput{}, nil, false
	}

	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.ValidationInvalidInput, "The given data was invalid",
			map[string]string{"price": "The price must be a number."})
		return service.ProductInput{}, nil, false
	}

	image, err := openImage(c)
	if err != nil {
		log.Error("Failed to read uploaded image", err, nil)
		ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.UploadFailed, "Failed to read uploaded image.", nil)
		return service.ProductInput{}, nil, false
	}

	return service.ProductInput{
		Name:        req.Name,
		Price:       price,
		Description: req.Description,
	}, image, true
}

type imageFile struct {
	up     storage.Upload
	closer func() error
}

func (f *imageFile) upload() *storage.Upload {
	if f == nil {
		return nil
	}
	return &f.up
}

func (f *imageFile) close() {
	f.closer()
}

// openImage returns nil when the request carries no "image" file.
func openImage(c *gin.Context) (*imageFile, error) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &imageFile{
		up: storage.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        f,
		},
		closer: f.Close,
	}, nil
}
