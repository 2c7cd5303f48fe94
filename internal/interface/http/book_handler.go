package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	"github.com/oksasatya/bookworm-api/internal/interface/middleware"
	"github.com/oksasatya/bookworm-api/pkg/response"
	"github.com/oksasatya/bookworm-api/pkg/validation"
)

// BookUseCase is the part of the book service the handler drives.
type BookUseCase interface {
	Create(ctx context.Context, ownerID string, in application.CreateBookInput) (*entity.Book, error)
	List(ctx context.Context, page, limit int) (*application.BookPage, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Book, error)
	Get(ctx context.Context, id string) (*entity.Book, error)
	Update(ctx context.Context, actorID, id string, in application.UpdateBookInput) (*entity.Book, error)
	Delete(ctx context.Context, actorID, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.Book, error)
}

type BookHandler struct {
	Svc    BookUseCase
	Logger *logrus.Logger
}

func NewBookHandler(svc BookUseCase, logger *logrus.Logger) *BookHandler {
	return &BookHandler{Svc: svc, Logger: logger}
}

type createBookRequest struct {
	Title   string `json:"title" binding:"required"`
	Caption string `json:"caption" binding:"required"`
	Rating  int    `json:"rating" binding:"required,rating"`
	Image   string `json:"image" binding:"required"`
}

type updateBookRequest struct {
	Title   string `json:"title"`
	Caption string `json:"caption"`
	Rating  int    `json:"rating" binding:"omitempty,rating"`
	Image   string `json:"image"`
}

type listBooksQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

type searchBooksQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

type authorView struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// bookView is the client representation of a book. User holds the populated
// author on public routes and the owner id on owner-scoped routes.
type bookView struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption"`
	Rating    int       `json:"rating"`
	Image     string    `json:"image"`
	User      any       `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type bookPageView struct {
	Books      []bookView `json:"books"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

func ownedBookView(b *entity.Book) bookView {
	return bookView{
		ID:        b.ID,
		Title:     b.Title,
		Caption:   b.Caption,
		Rating:    b.Rating,
		Image:     b.Image,
		User:      b.UserID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func publicBookView(b *entity.Book) bookView {
	v := ownedBookView(b)
	if b.Author != nil {
		v.User = authorView{ID: b.Author.ID, Username: b.Author.Username, ProfileImage: b.Author.ProfileImage}
	}
	return v
}

func bookViews(books []entity.Book, view func(*entity.Book) bookView) []bookView {
	out := make([]bookView, 0, len(books))
	for i := range books {
		out = append(out, view(&books[i]))
	}
	return out
}

// bindFailure answers a book payload that failed binding. Validator failures
// reuse the service messages; undecodable bodies get a generic one.
func bindFailure(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case validation.HasTag(err, "rating"):
		response.Error[any](c, http.StatusBadRequest, application.ErrInvalidRating.Message, validation.ToDetails(err))
	case errors.As(err, &verrs):
		response.Error[any](c, http.StatusBadRequest, application.ErrMissingBookFields.Message, validation.ToDetails(err))
	default:
		response.Error[any](c, http.StatusBadRequest, "Invalid request body", validation.ToDetails(err))
	}
}

// Create POST /api/books (auth required)
func (h *BookHandler) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.CreateBookInput{
		Title:   req.Title,
		Caption: req.Caption,
		Rating:  req.Rating,
		Image:   req.Image,
	})
	if err != nil {
		respondError(c, h.Logger, "create book", err)
		return
	}
	response.Success(c, http.StatusCreated, ownedBookView(b), "Book created successfully", nil)
}

// List GET /api/books?page=&limit=
func (h *BookHandler) List(c *gin.Context) {
	var q listBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid query parameters", validation.ToDetails(err))
		return
	}
	page, err := h.Svc.List(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		respondError(c, h.Logger, "list books", err)
		return
	}
	response.Success(c, http.StatusOK, bookPageView{
		Books:      bookViews(page.Books, publicBookView),
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	}, "", nil)
}

// ListMine GET /api/books/user (auth required)
func (h *BookHandler) ListMine(c *gin.Context) {
	books, err := h.Svc.ListByOwner(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		respondError(c, h.Logger, "list user books", err)
		return
	}
	response.Success(c, http.StatusOK, bookViews(books, ownedBookView), "", nil)
}

// Get GET /api/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, "get book", err)
		return
	}
	response.Success(c, http.StatusOK, publicBookView(b), "", nil)
}

// Update PUT /api/books/:id (auth required, owner only)
func (h *BookHandler) Update(c *gin.Context) {
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), application.UpdateBookInput{
		Title:   req.Title,
		Caption: req.Caption,
		Rating:  req.Rating,
		Image:   req.Image,
	})
	if err != nil {
		respondError(c, h.Logger, "update book", err)
		return
	}
	response.Success(c, http.StatusOK, ownedBookView(b), "Book updated successfully", nil)
}

// Delete DELETE /api/books/:id (auth required, owner only)
func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		respondError(c, h.Logger, "delete book", err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Book deleted successfully", nil)
}

// Search GET /api/books/search?q=&size=
func (h *BookHandler) Search(c *gin.Context) {
	var q searchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid query parameters", validation.ToDetails(err))
		return
	}
	books, err := h.Svc.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		respondError(c, h.Logger, "search books", err)
		return
	}
	response.Success(c, http.StatusOK, bookViews(books, publicBookView), "", nil)
}
