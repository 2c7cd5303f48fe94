package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bookworm-api/internal/container"
	handlers "github.com/oksasatya/bookworm-api/internal/interface/http"
	"github.com/oksasatya/bookworm-api/internal/interface/middleware"
)

type BookModule struct {
	Handler *handlers.BookHandler
	Authn   middleware.Authenticator
}

func NewBookModule(h *handlers.BookHandler, authn middleware.Authenticator) *BookModule {
	return &BookModule{Handler: h, Authn: authn}
}

func (m *BookModule) Register(rg *gin.RouterGroup) {
	books := rg.Group("/books")

	// Public reads; static segments are registered alongside :id, gin prefers them
	books.GET("", m.Handler.List)
	books.GET("/search", middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil), m.Handler.Search)
	books.GET("/:id", m.Handler.Get)

	// Owner endpoints with user-based rate limit
	auth := books.Group("")
	auth.Use(middleware.Auth(m.Authn, container.GetLogger()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/user", m.Handler.ListMine)
		auth.POST("", m.Handler.Create)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
