package controller

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/deqistore/deqistore-backend/internal/errors"
	"github.com/deqistore/deqistore-backend/internal/flash"
	"github.com/deqistore/deqistore-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Responder finishes mutating requests. Browsers that sent a same-site Referer
// get a 303 back to it with the outcome queued as a flash message; every other
// client gets a JSON envelope.
type Responder struct {
	flashes flash.Store
}

func NewResponder(flashes flash.Store) *Responder {
	return &Responder{flashes: flashes}
}

// Success reports a completed mutation. body may be nil.
func (r *Responder) Success(c *gin.Context, status int, message string, body gin.H) {
	if r.redirectWithFlash(c, flash.Message{Type: flash.Success, Message: message}) {
		return
	}
	if body == nil {
		body = gin.H{}
	}
	body["message"] = message
	c.JSON(status, body)
}

// Fail reports a rejected mutation. Non-nil fields produce a validation envelope.
func (r *Responder) Fail(c *gin.Context, status int, code, message string, fields map[string]string) {
	if r.redirectWithFlash(c, flash.Message{Type: flash.Error, Message: message}) {
		return
	}
	if fields != nil {
		apperrors.RespondWithValidationError(c, fields)
		return
	}
	apperrors.RespondWithError(c, status, code, message)
}

func (r *Responder) redirectWithFlash(c *gin.Context, msg flash.Message) bool {
	target, ok := backURL(c)
	if !ok || r.flashes == nil {
		return false
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return false
	}

	if err := r.flashes.Push(c.Request.Context(), userID, msg); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to store flash message", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	c.Redirect(http.StatusSeeOther, target)
	return true
}

// backURL returns the Referer when the client prefers HTML and the Referer
// points at this host.
func backURL(c *gin.Context) (string, bool) {
	if !strings.Contains(c.GetHeader("Accept"), "text/html") {
		return "", false
	}
	referer := c.GetHeader("Referer")
	if referer == "" {
		return "", false
	}
	u, err := url.Parse(referer)
	if err != nil {
		return "", false
	}
	if u.Host != "" && u.Host != c.Request.Host {
		return "", false
	}
	return referer, true
}

// PendingFlash pops the caller's queued flash message, if any.
func (r *Responder) PendingFlash(c *gin.Context) *flash.Message {
	userID, ok := middleware.GetUserID(c)
	if !ok || r.flashes == nil {
		return nil
	}
	msg, err := r.flashes.Pop(c.Request.Context(), userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to read flash message", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil
	}
	return msg
}

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
