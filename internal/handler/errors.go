package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plz-territory-go/internal/region"
)

// statusFor maps a store error kind to an HTTP status
func statusFor(err error) int {
	switch region.KindOf(err) {
	case region.KindValidation:
		return http.StatusBadRequest
	case region.KindNotFound:
		return http.StatusNotFound
	case region.KindConflict:
		return http.StatusConflict
	case region.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...} for a store error. Storage failures are
// logged and reported without their cause.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		logger.Error("Store operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "Storage unavailable, please retry later"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
