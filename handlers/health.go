package handlers

import (
	"net/http"

	"beautycita/utils"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health with the latest dependency snapshot. Counters are optional.
func Health(sessions func() int, sockets func() int) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := utils.GetHealthStatus()
		body := gin.H{
			"status":       "ok",
			"message":      "Hi, I'm BeautyCita",
			"dependencies": status,
		}
		if sessions != nil {
			body["sessions"] = sessions()
		}
		if sockets != nil {
			body["sockets"] = sockets()
		}
		code := http.StatusOK
		if !status.Healthy() {
			body["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, body)
	}
}
