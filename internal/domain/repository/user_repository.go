package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/bookworm-api/internal/domain/entity"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// UserRepository defines the interface for user-related database operations.
// Create must report unique-constraint violations as ErrDuplicateEmail or
// ErrDuplicateUsername; lookups report a missing row as ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
