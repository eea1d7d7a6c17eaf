package controller

import (
	"net/http"

	apperrors "github.com/deqistore/deqistore-backend/internal/errors"
	"github.com/deqistore/deqistore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type FlashController struct {
	respond *Responder
}

func NewFlashController(respond *Responder) *FlashController {
	return &FlashController{respond: respond}
}

// GetFlash pops the pending flash message; flash is null when none is queued
// GET /flash
func (ctrl *FlashController) GetFlash(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"flash": ctrl.respond.PendingFlash(c)})
}
