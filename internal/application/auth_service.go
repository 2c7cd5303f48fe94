package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	repo "github.com/oksasatya/bookworm-api/internal/domain/repository"
	"github.com/oksasatya/bookworm-api/pkg/helpers"
	"github.com/oksasatya/bookworm-api/pkg/mailer"
	mailtpl "github.com/oksasatya/bookworm-api/pkg/mailer/templates"
	"github.com/oksasatya/bookworm-api/pkg/validation"
)

// AuthService implements registration, login and token resolution.
type AuthService struct {
	Repo    repo.UserRepository
	Hasher  *helpers.PasswordHasher
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Mail    JobPublisher // optional; welcome emails are skipped when nil
	AppName string
}

func NewAuthService(users repo.UserRepository, hasher *helpers.PasswordHasher, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &AuthService{Repo: users, Hasher: hasher, JWT: jwt, Logger: logger}
}

// WithWelcomeMail enables welcome emails published through pub.
func (s *AuthService) WithWelcomeMail(pub JobPublisher, appName string) *AuthService {
	s.Mail = pub
	s.AppName = appName
	return s
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"-"`
	User      entity.PublicUser `json:"user"`
}

// Register validates in, enforces uniqueness, stores the user and issues a token.
// Email uniqueness is checked before username uniqueness.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" || email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	// lengths are in characters; bcrypt separately caps the byte length
	if utf8.RuneCountInString(in.Password) < validation.MinPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if utf8.RuneCountInString(username) < validation.MinUsernameLen {
		return nil, ErrUsernameTooShort
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.Repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameInUse
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, helpers.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Username:     username,
		Email:        email,
		Password:     digest,
		ProfileImage: helpers.DefaultAvatarURL(username),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		// the unique indexes are authoritative when two registrations race
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, ErrEmailInUse
		case errors.Is(err, repo.ErrDuplicateUsername):
			return nil, ErrUsernameInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	s.sendWelcome(ctx, u)
	return res, nil
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !s.Hasher.Verify(in.Password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Authenticate resolves a bearer token to its user. Invalid or expired tokens
// and tokens of deleted users all yield ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	uid, err := s.JWT.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.Repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.Issue(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

func (s *AuthService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.WelcomeData(s.AppName, u.Username, u.Email, u.ProfileImage),
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to publish welcome email")
	}
}
