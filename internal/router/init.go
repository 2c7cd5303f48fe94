package router

import (
	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/internal/container"
	"github.com/oksasatya/bookworm-api/internal/infrastructure/cache"
	"github.com/oksasatya/bookworm-api/internal/infrastructure/gcs"
	pginfra "github.com/oksasatya/bookworm-api/internal/infrastructure/postgres"
	"github.com/oksasatya/bookworm-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/bookworm-api/internal/interface/http"
	"github.com/oksasatya/bookworm-api/internal/router/modules"
)

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

type BookModuleDeps struct {
	Service *application.BookService
	Handler *handlers.BookHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	users := pginfra.NewUserRepository(container.GetPGPool())

	service := application.NewAuthService(users, container.GetHasher(), container.GetJWT(), container.GetLogger())
	if pub := container.GetRabbitPub(); pub != nil {
		service.WithWelcomeMail(pub, cfg.AppName)
	}

	return AuthModuleDeps{
		Service: service,
		Handler: handlers.NewAuthHandler(service, container.GetLogger()),
	}
}

func buildBookDeps() BookModuleDeps {
	cfg := container.GetConfig()
	books := pginfra.NewBookRepository(container.GetPGPool())
	images := gcs.NewImageStore(container.GetGCS(), cfg.GCSBucket, cfg.MaxImageBytes)

	// optional backends stay nil interfaces when disabled
	var index application.BookIndex
	if idx := search.NewBookIndex(container.GetES(), cfg.ESBooksIndex); idx != nil {
		index = idx
	}
	var bookCache application.BookCache
	if bc := cache.NewBookCache(container.GetRedis(), cfg.BookCacheTTL, container.GetLogger()); bc != nil {
		bookCache = bc
	}

	service := application.NewBookService(books, images, index, bookCache, container.GetLogger())
	return BookModuleDeps{
		Service: service,
		Handler: handlers.NewBookHandler(service, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	authDeps := buildAuthDeps()
	bookDeps := buildBookDeps()

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(authDeps.Handler, authDeps.Service))
	r.Add(modules.NewBookModule(bookDeps.Handler, authDeps.Service))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
