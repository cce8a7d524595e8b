package handlers

import (
	"net/http"

	"pingparcel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped Zap logger from the Gin context,
// falling back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.L()
}

// respondError writes err as {"error": msg} with the status for its kind.
// Store failures are logged in full and reported generically.
func respondError(c *gin.Context, msg string, err error) {
	status := utils.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		getLogger(c).Error(msg, zap.Error(err))
	} else {
		getLogger(c).Debug(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": utils.PublicMessage(err)})
}

// respondBindError reports a body that could not be decoded.
func respondBindError(c *gin.Context, err error) {
	getLogger(c).Debug("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
