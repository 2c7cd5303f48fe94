package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bookworm-api/pkg/response"
)

// Health GET /api/health
func Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "", nil)
}
