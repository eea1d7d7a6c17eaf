package controller

import (
	"errors"
	"net/http"

	"github.com/deqistore/deqistore-backend/internal/app/service"
	apperrors "github.com/deqistore/deqistore-backend/internal/errors"
	"github.com/deqistore/deqistore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
	respond     *Responder
}

func NewCartController(cartService service.CartService, respond *Responder) *CartController {
	return &CartController{
		cartService: cartService,
		respond:     respond,
	}
}

// AddToCartRequest accepts product_id from a form post or a JSON body
type AddToCartRequest struct {
	ProductID uint `form:"product_id" json:"product_id" binding:"required"`
}

// GetCart returns user's cart with its unit count, total and pending flash
// GET /cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	ctx := c.Request.Context()
	cartItems, err := ctrl.cartService.List(ctx, userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	total, err := ctrl.cartService.Total(ctx, userID)
	if err != nil {
		log.Error("Failed to compute cart total", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	count, err := ctrl.cartService.Count(ctx, userID)
	if err != nil {
		log.Error("Failed to count cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_items": cartItems,
		"count":      count,
		"total":      total,
		"flash":      ctrl.respond.PendingFlash(c),
	})
}

// AddToCart adds one unit of a product to the cart
// POST /cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		fields := apperrors.ValidationFields(err)
		if fields == nil {
			fields = map[string]string{"product_id": "The product id must be a number."}
		}
		ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.ValidationInvalidInput, "The given data was invalid", fields)
		return
	}

	item, err := ctrl.cartService.Add(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			ctrl.respond.Fail(c, http.StatusNotFound, apperrors.ProductNotFound, "Product not found.", nil)
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		ctrl.respond.Fail(c, http.StatusInternalServerError, apperrors.InternalServerError, "Failed to add product to cart.", nil)
		return
	}

	ctrl.respond.Success(c, http.StatusOK, "Product added to cart.", gin.H{
		"cart_item": item,
	})
}

// RemoveFromCart removes a line from the user's own cart
// DELETE /cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		log.Warn("Invalid cart item ID format", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": c.Param("id"),
		})
		ctrl.respond.Fail(c, http.StatusBadRequest, apperrors.ValidationInvalidID, "Invalid cart item ID.", nil)
		return
	}

	if err := ctrl.cartService.Remove(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			ctrl.respond.Fail(c, http.StatusNotFound, apperrors.CartItemNotFound, "Item not found.", nil)
			return
		}
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": id,
		})
		ctrl.respond.Fail(c, http.StatusInternalServerError, apperrors.InternalServerError, "Failed to remove item.", nil)
		return
	}

	ctrl.respond.Success(c, http.StatusOK, "Product removed from cart.", nil)
}

// GetCount returns the number of units in the cart
// GET /cart/count
func (ctrl *CartController) GetCount(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	count, err := ctrl.cartService.Count(c.Request.Context(), userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to count cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
