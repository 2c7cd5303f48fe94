package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/bookworm-api/config"
	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	repo "github.com/oksasatya/bookworm-api/internal/domain/repository"
	pginfra "github.com/oksasatya/bookworm-api/internal/infrastructure/postgres"
	"github.com/oksasatya/bookworm-api/pkg/helpers"
)

var demoBooks = []entity.Book{
	{Title: "The Hobbit", Caption: "A cozy adventure that never gets old.", Rating: 5, Image: "https://covers.openlibrary.org/b/isbn/9780547928227-L.jpg"},
	{Title: "Dune", Caption: "Dense world building, worth the effort.", Rating: 4, Image: "https://covers.openlibrary.org/b/isbn/9780441172719-L.jpg"},
	{Title: "Project Hail Mary", Caption: "Science, humor and a great friendship.", Rating: 5, Image: "https://covers.openlibrary.org/b/isbn/9780593135204-L.jpg"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{AppName: cfg.AppName + "-seed", MaxConns: 2})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	books := pginfra.NewBookRepository(pool)
	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)

	email := "demo@bookworm.dev"
	password := "password123"
	username := "demoUser"

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		fmt.Printf("user exists: id=%s email=%s\n", u.ID, u.Email)
	case errors.Is(err, repo.ErrNotFound):
		digest, err := hasher.Hash(password)
		if err != nil {
			logger.Fatalf("failed to hash password: %v", err)
		}
		u = &entity.User{
			Username:     username,
			Email:        email,
			Password:     digest,
			ProfileImage: helpers.DefaultAvatarURL(username),
		}
		if err := users.Create(ctx, u); err != nil {
			logger.Fatalf("failed to seed user: %v", err)
		}
		fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, email, username, password)
	default:
		logger.Fatalf("failed to look up seed user: %v", err)
	}

	existing, err := books.ListByUser(ctx, u.ID)
	if err != nil {
		logger.Fatalf("failed to list seed books: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("user already has %d books; skipping\n", len(existing))
		return
	}
	for _, b := range demoBooks {
		b.UserID = u.ID
		if err := books.Create(ctx, &b); err != nil {
			logger.Fatalf("failed to seed book %q: %v", b.Title, err)
		}
		fmt.Printf("seeded book: id=%s title=%s\n", b.ID, b.Title)
	}
}
