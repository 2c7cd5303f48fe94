package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("jwt secret must not be empty")
)

// JWTManager issues and verifies the HS256 identity tokens handed to clients.
// Tokens are stateless: validity ends at expiry or when the secret changes.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type JWTOption func(*JWTManager)

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

func NewJWTManager(secret string, ttl time.Duration, opts ...JWTOption) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	m := &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (m *JWTManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for userID that expires TTL from now.
func (m *JWTManager) Issue(userID string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Verify returns the user id carried by tokenStr. Any defect (bad signature,
// unexpected algorithm, expiry, malformed payload, missing user id) yields
// ErrInvalidToken.
func (m *JWTManager) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
