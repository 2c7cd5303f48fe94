package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	"github.com/oksasatya/bookworm-api/internal/domain/repository"
)

const bookWithAuthorSelect = `
	SELECT b.id, b.title, b.caption, b.rating, b.image, b.user_id, b.created_at, b.updated_at,
	       u.username, u.email, u.profile_image
	FROM books b
	JOIN users u ON u.id = b.user_id`

type BookRepository struct {
	db DB
}

func NewBookRepository(db DB) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) Create(ctx context.Context, b *entity.Book) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO books (title, caption, rating, image, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, b.Title, b.Caption, b.Rating, b.Image, b.UserID)
	if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	row := r.db.QueryRow(ctx, bookWithAuthorSelect+` WHERE b.id = $1`, id)
	b, err := scanBookWithAuthor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select book: %w", err)
	}
	return b, nil
}

func (r *BookRepository) List(ctx context.Context, offset, limit int) ([]entity.Book, error) {
	rows, err := r.db.Query(ctx, bookWithAuthorSelect+`
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Book, 0, limit)
	for rows.Next() {
		b, err := scanBookWithAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

func (r *BookRepository) ListByUser(ctx context.Context, userID string) ([]entity.Book, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, caption, rating, image, user_id, created_at, updated_at
		FROM books
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		if isMalformedID(err) {
			return []entity.Book{}, nil
		}
		return nil, fmt.Errorf("list user books: %w", err)
	}
	defer rows.Close()

	out := []entity.Book{}
	for rows.Next() {
		var b entity.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Caption, &b.Rating, &b.Image, &b.UserID,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BookRepository) Update(ctx context.Context, b *entity.Book) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := r.db.Exec(ctx, `
		UPDATE books
		SET title = $1, caption = $2, rating = $3, image = $4, updated_at = $5
		WHERE id = $6
	`, b.Title, b.Caption, b.Rating, b.Image, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		if isMalformedID(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanBookWithAuthor(row pgx.Row) (*entity.Book, error) {
	b := &entity.Book{Author: &entity.Author{}}
	if err := row.Scan(&b.ID, &b.Title, &b.Caption, &b.Rating, &b.Image, &b.UserID,
		&b.CreatedAt, &b.UpdatedAt,
		&b.Author.Username, &b.Author.Email, &b.Author.ProfileImage); err != nil {
		return nil, err
	}
	b.Author.ID = b.UserID
	return b, nil
}

var _ repository.BookRepository = (*BookRepository)(nil)
