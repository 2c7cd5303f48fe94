package application

import (
	"context"

	"github.com/oksasatya/bookworm-api/internal/domain/entity"
)

// ImageStore hosts book cover images. payload is an http(s) URL or a base64 data URI.
type ImageStore interface {
	Upload(ctx context.Context, ownerID, payload string) (string, error)
	Delete(ctx context.Context, url string) error
}

// BookIndex is the full-text search index for books.
type BookIndex interface {
	Index(ctx context.Context, b *entity.Book) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.Book, error)
}

// BookCache caches book details keyed by id.
type BookCache interface {
	Get(ctx context.Context, id string) (*entity.Book, bool)
	Set(ctx context.Context, b *entity.Book)
	Invalidate(ctx context.Context, id string)
}

// JobPublisher enqueues background jobs as JSON.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
