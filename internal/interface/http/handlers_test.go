package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	"github.com/oksasatya/bookworm-api/internal/interface/middleware"
	"github.com/oksasatya/bookworm-api/pkg/validation"
)

type mockAuthService struct {
	RegisterFunc func(ctx context.Context, in application.RegisterInput) (*application.AuthResult, error)
	LoginFunc    func(ctx context.Context, in application.LoginInput) (*application.AuthResult, error)
}

func (m *mockAuthService) Register(ctx context.Context, in application.RegisterInput) (*application.AuthResult, error) {
	return m.RegisterFunc(ctx, in)
}

func (m *mockAuthService) Login(ctx context.Context, in application.LoginInput) (*application.AuthResult, error) {
	return m.LoginFunc(ctx, in)
}

type mockBookService struct {
	CreateFunc      func(ctx context.Context, ownerID string, in application.CreateBookInput) (*entity.Book, error)
	ListFunc        func(ctx context.Context, page, limit int) (*application.BookPage, error)
	ListByOwnerFunc func(ctx context.Context, ownerID string) ([]entity.Book, error)
	GetFunc         func(ctx context.Context, id string) (*entity.Book, error)
	UpdateFunc      func(ctx context.Context, actorID, id string, in application.UpdateBookInput) (*entity.Book, error)
	DeleteFunc      func(ctx context.Context, actorID, id string) error
	SearchFunc      func(ctx context.Context, q string, size int) ([]entity.Book, error)
}

func (m *mockBookService) Create(ctx context.Context, ownerID string, in application.CreateBookInput) (*entity.Book, error) {
	return m.CreateFunc(ctx, ownerID, in)
}

func (m *mockBookService) List(ctx context.Context, page, limit int) (*application.BookPage, error) {
	return m.ListFunc(ctx, page, limit)
}

func (m *mockBookService) ListByOwner(ctx context.Context, ownerID string) ([]entity.Book, error) {
	return m.ListByOwnerFunc(ctx, ownerID)
}

func (m *mockBookService) Get(ctx context.Context, id string) (*entity.Book, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockBookService) Update(ctx context.Context, actorID, id string, in application.UpdateBookInput) (*entity.Book, error) {
	return m.UpdateFunc(ctx, actorID, id, in)
}

func (m *mockBookService) Delete(ctx context.Context, actorID, id string) error {
	return m.DeleteFunc(ctx, actorID, id)
}

func (m *mockBookService) Search(ctx context.Context, q string, size int) ([]entity.Book, error) {
	return m.SearchFunc(ctx, q, size)
}

// withUser stands in for the auth middleware.
func withUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserIDKey, id)
		c.Set(middleware.CtxUserKey, entity.PublicUser{ID: id, Username: "user-" + id})
		c.Next()
	}
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	return gin.New()
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func perform(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}
