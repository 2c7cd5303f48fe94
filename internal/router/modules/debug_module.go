package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/bookworm-api/internal/container"
	"github.com/oksasatya/bookworm-api/internal/interface/middleware"
)

// DebugModule exposes expvar and Prometheus metrics. It is only registered when debug metrics are enabled.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// internal scrapers on private networks bypass the per-IP limit
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	rg.GET("/metrics", rl, gin.WrapH(promhttp.Handler()))
}
