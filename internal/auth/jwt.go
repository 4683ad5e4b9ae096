package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lmasson/course-management/internal/domain/entity"
)

// ErrInvalidAuthToken is returned when a bearer token cannot be parsed
// or fails validation.
var ErrInvalidAuthToken = errors.New("invalid auth token")

// Claims is the JWT payload carried by authenticated requests. The
// workflow engines trust this actor completely once the signature
// checks out.
type Claims struct {
	UserID int64       `json:"uid"`
	Role   entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager with the given signing secret
// and token lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given user.
func (m *TokenManager) Issue(user *entity.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a token, returning its claims.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidAuthToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !claims.Role.IsValid() {
		return nil, ErrInvalidAuthToken
	}
	return claims, nil
}
