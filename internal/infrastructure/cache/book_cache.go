package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	"github.com/oksasatya/bookworm-api/pkg/helpers"
)

// BookCache stores book details in Redis as JSON. Redis errors degrade to cache misses.
type BookCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewBookCache returns nil when rdb is nil or ttl is not positive.
func NewBookCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *BookCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &BookCache{rdb: rdb, ttl: ttl, logger: logger}
}

func bookKey(id string) string { return "book:detail:" + id }

func (c *BookCache) Get(ctx context.Context, id string) (*entity.Book, bool) {
	var b entity.Book
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, bookKey(id), &b)
	if err != nil {
		c.logger.WithError(err).WithField("book_id", id).Warn("book cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &b, true
}

func (c *BookCache) Set(ctx context.Context, b *entity.Book) {
	if err := helpers.RedisSetJSON(ctx, c.rdb, bookKey(b.ID), b, c.ttl); err != nil {
		c.logger.WithError(err).WithField("book_id", b.ID).Warn("book cache write failed")
	}
}

func (c *BookCache) Invalidate(ctx context.Context, id string) {
	if err := helpers.RedisDel(ctx, c.rdb, bookKey(id)); err != nil {
		c.logger.WithError(err).WithField("book_id", id).Warn("book cache invalidate failed")
	}
}

var _ application.BookCache = (*BookCache)(nil)
