package controller

import (
	"net/http"

	"github.com/deqistore/deqistore-backend/internal/app/service"
	apperrors "github.com/deqistore/deqistore-backend/internal/errors"
	"github.com/deqistore/deqistore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
	respond         *Responder
}

func NewCheckoutController(checkoutService service.CheckoutService, respond *Responder) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		respond:         respond,
	}
}

// GetCheckout returns a read-only summary of the live cart
// GET /checkout
func (ctrl *CheckoutController) GetCheckout(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	summary, err := ctrl.checkoutService.Summary(c.Request.Context(), userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to build checkout summary", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout": summary,
		"flash":    ctrl.respond.PendingFlash(c),
	})
}
