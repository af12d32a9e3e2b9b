// token.go — выпуск JWT для аутентифицированных пользователей.
package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/jobly/internal/domain/model"
)

// tokenClaims — claims выпускаемого токена: username, isAdmin, iat, jti.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// TokenIssuer подписывает токены HS256 общим секретом.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer создаёт издателя токенов.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue выпускает токен для пользователя. Срок действия не ограничен.
func (t *TokenIssuer) Issue(u *model.User) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(t.now()),
		},
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}
