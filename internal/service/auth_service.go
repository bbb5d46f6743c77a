package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
)

// ErrTokenSubject is returned for a verified token that names no user.
var ErrTokenSubject = errors.New("token has no subject")

// Claims are the identity provider's token claims. The subject is the opaque
// user id results are attributed to.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// CurrentUserID makes verified claims usable as the session identity.
func (c *Claims) CurrentUserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// AuthService verifies tokens issued by the identity provider. Sign-in itself
// happens elsewhere.
type AuthService struct {
	secret []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{secret: []byte(cfg.JWTSecret)}
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, ErrTokenSubject
	}
	return claims, nil
}

// IssueToken signs a token for subject with the shared secret. It stands in
// for the identity provider in local tooling and tests.
func (s *AuthService) IssueToken(subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
