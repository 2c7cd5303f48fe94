package repository

import (
	"context"

	"github.com/oksasatya/bookworm-api/internal/domain/entity"
)

// BookRepository persists book posts. Get and List populate Book.Author.
type BookRepository interface {
	Create(ctx context.Context, b *entity.Book) error
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	List(ctx context.Context, offset, limit int) ([]entity.Book, error)
	Count(ctx context.Context) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Book, error)
	Update(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id string) error
}
