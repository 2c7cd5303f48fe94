package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	repo "github.com/oksasatya/bookworm-api/internal/domain/repository"
	"github.com/oksasatya/bookworm-api/pkg/helpers"
	"github.com/oksasatya/bookworm-api/pkg/validation"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 50
	MaxPage         = 1_000_000
	maxSearchSize   = 50
)

// BookService manages book posts. Only the owner may change or remove a post.
type BookService struct {
	Books  repo.BookRepository
	Images ImageStore
	Index  BookIndex // optional
	Cache  BookCache // optional
	Logger *logrus.Logger
}

func NewBookService(books repo.BookRepository, images ImageStore, index BookIndex, cache BookCache, logger *logrus.Logger) *BookService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &BookService{Books: books, Images: images, Index: index, Cache: cache, Logger: logger}
}

type CreateBookInput struct {
	Title   string
	Caption string
	Rating  int
	Image   string
}

// UpdateBookInput carries a partial update; zero values leave fields unchanged.
type UpdateBookInput struct {
	Title   string
	Caption string
	Rating  int
	Image   string
}

type BookPage struct {
	Books      []entity.Book
	Total      int64
	Page       int
	TotalPages int
}

func (s *BookService) Create(ctx context.Context, ownerID string, in CreateBookInput) (*entity.Book, error) {
	title := strings.TrimSpace(in.Title)
	caption := strings.TrimSpace(in.Caption)
	if title == "" || caption == "" || in.Rating == 0 || strings.TrimSpace(in.Image) == "" {
		return nil, ErrMissingBookFields
	}
	if !validRating(in.Rating) {
		return nil, ErrInvalidRating
	}

	url, err := s.Images.Upload(ctx, ownerID, strings.TrimSpace(in.Image))
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	b := &entity.Book{Title: title, Caption: caption, Rating: in.Rating, Image: url, UserID: ownerID}
	if err := s.Books.Create(ctx, b); err != nil {
		s.discardImage(ctx, url)
		return nil, fmt.Errorf("create book: %w", err)
	}
	s.index(ctx, b)
	return b, nil
}

// List returns a page of books, newest first. page and limit below 1 fall back
// to defaults; oversized values are clamped so the offset cannot overflow.
func (s *BookService) List(ctx context.Context, page, limit int) (*BookPage, error) {
	page, limit = normalizePage(page, limit)
	books, err := s.Books.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	total, err := s.Books.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	return &BookPage{
		Books:      books,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *BookService) ListByOwner(ctx context.Context, ownerID string) ([]entity.Book, error) {
	books, err := s.Books.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}
	return books, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*entity.Book, error) {
	if s.Cache != nil {
		if b, ok := s.Cache.Get(ctx, id); ok {
			return b, nil
		}
	}
	b, err := s.Books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, b)
	}
	return b, nil
}

func (s *BookService) Update(ctx context.Context, actorID, id string, in UpdateBookInput) (*entity.Book, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.OwnedBy(actorID) {
		return nil, ErrNotBookOwnerEdit
	}
	if in.Rating != 0 && !validRating(in.Rating) {
		return nil, ErrInvalidRating
	}

	oldImage := ""
	if img := strings.TrimSpace(in.Image); img != "" && img != b.Image {
		url, err := s.Images.Upload(ctx, actorID, img)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		oldImage, b.Image = b.Image, url
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		b.Title = t
	}
	if c := strings.TrimSpace(in.Caption); c != "" {
		b.Caption = c
	}
	if in.Rating != 0 {
		b.Rating = in.Rating
	}

	if err := s.Books.Update(ctx, b); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	if oldImage != "" {
		s.discardImage(ctx, oldImage)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, b.ID)
	}
	s.index(ctx, b)
	return b, nil
}

func (s *BookService) Delete(ctx context.Context, actorID, id string) error {
	b, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !b.OwnedBy(actorID) {
		return ErrNotBookOwnerDel
	}
	// the image goes only once the row is gone, so a failed delete leaves the book intact
	if err := s.Books.Delete(ctx, b.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}
	s.discardImage(ctx, b.Image)
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, b.ID)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, b.ID); err != nil {
			s.Logger.WithError(err).WithField("book_id", b.ID).Warn("search unindex failed")
		}
	}
	return nil
}

// Search runs a full-text query over titles and captions. Without an index it returns no results.
func (s *BookService) Search(ctx context.Context, q string, size int) ([]entity.Book, error) {
	q = strings.TrimSpace(q)
	if s.Index == nil || q == "" {
		return []entity.Book{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = 10
	}
	books, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// load reads a book bypassing the cache; ownership checks must see the stored row.
func (s *BookService) load(ctx context.Context, id string) (*entity.Book, error) {
	b, err := s.Books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (s *BookService) index(ctx context.Context, b *entity.Book) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, b); err != nil {
		s.Logger.WithError(err).WithField("book_id", b.ID).Warn("search index failed")
	}
}

func (s *BookService) discardImage(ctx context.Context, url string) {
	if err := s.Images.Delete(ctx, url); err != nil {
		s.Logger.WithError(err).WithField("image", url).Warn("failed to delete hosted image")
	}
}

func validRating(r int) bool {
	return r >= validation.MinRating && r <= validation.MaxRating
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
