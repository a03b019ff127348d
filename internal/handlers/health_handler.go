package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Health answers GET /health. now is injectable for tests.
func Health(now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": now().UTC().Format(isoMillis),
		})
	}
}
