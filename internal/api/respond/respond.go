// Package respond maps service errors and request context to gin responses.
package respond

import (
	"errors"
	"net/http"
	"strconv"

	"epaper-app/internal/domain/access"
	"epaper-app/internal/editions"
	"epaper-app/internal/infra/lock"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerKey is where the request logger middleware stores the per-request logger.
const LoggerKey = "logger"

// Logger returns the request-scoped logger, or the global one outside a request.
func Logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}

// Error writes the response for err. notFound and failed are the messages used
// for missing rows and unexpected failures.
func Error(c *gin.Context, err error, notFound, failed string) {
	var ve *editions.ValidationError
	switch {
	case errors.As(err, &ve):
		body := gin.H{"error": "Validation failed", "errors": ve.Fields}
		if len(ve.Blockers) > 0 {
			body["blockers"] = ve.Blockers
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, editions.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, editions.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, lock.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "This edition is being changed by another request. Try again."})
	default:
		Logger(c).Error(failed, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": failed, "details": err.Error()})
	}
}

// Invalid writes a 422 for a single malformed field.
func Invalid(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":  "Validation failed",
		"errors": gin.H{field: []string{msg}},
	})
}

// ID parses a positive integer route parameter. Anything else is a 404, the
// same as an id that matches no row.
func ID(c *gin.Context, name, notFound string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return 0, false
	}
	return uint(v), true
}

// Actor returns the authenticated caller set by the auth middleware.
func Actor(c *gin.Context) (access.Actor, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return access.Actor{}, false
	}
	return access.Actor{UserID: userID, Role: c.GetString("role")}, true
}

func uintPtr(v uint) *uint { return &v }

// ActorID is the caller's user id as a nullable column value.
func ActorID(c *gin.Context) *uint {
	if id := c.GetUint("user_id"); id != 0 {
		return uintPtr(id)
	}
	return nil
}
