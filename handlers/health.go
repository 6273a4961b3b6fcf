package handlers

import (
	"net/http"

	"servihub/utils"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health from the in-memory monitor snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
