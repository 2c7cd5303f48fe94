package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/internal/interface/middleware"
	"github.com/oksasatya/bookworm-api/pkg/response"
	"github.com/oksasatya/bookworm-api/pkg/validation"
)

// AuthUseCase is the part of the auth service the handler drives.
type AuthUseCase interface {
	Register(ctx context.Context, in application.RegisterInput) (*application.AuthResult, error)
	Login(ctx context.Context, in application.LoginInput) (*application.AuthResult, error)
}

type AuthHandler struct {
	Svc    AuthUseCase
	Logger *logrus.Logger
}

func NewAuthHandler(svc AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// Presence and length rules live in the service so every caller gets the same messages.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid request body", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, "register", err)
		return
	}
	response.Success(c, http.StatusCreated, res, "User registered successfully", gin.H{"expires_at": res.ExpiresAt})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid request body", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), application.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, "login", err)
		return
	}
	response.Success(c, http.StatusOK, res, "Login successful", gin.H{"expires_at": res.ExpiresAt})
}

// Me GET /api/auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "", nil)
}
