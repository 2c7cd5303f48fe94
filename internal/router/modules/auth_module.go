package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bookworm-api/internal/container"
	handlers "github.com/oksasatya/bookworm-api/internal/interface/http"
	"github.com/oksasatya/bookworm-api/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Authn   middleware.Authenticator
}

func NewAuthModule(h *handlers.AuthHandler, authn middleware.Authenticator) *AuthModule {
	return &AuthModule{Handler: h, Authn: authn}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits against credential stuffing
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/signup", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)

	rg.GET("/auth/me", middleware.Auth(m.Authn, container.GetLogger()), m.Handler.Me)
}
