package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken создаёт access-токен владельца (HS256, claim owner_id).
func GenerateToken(secret string, ownerID uuid.UUID, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"owner_id":   ownerID.String(),
		"token_type": "access",
		"exp":        now.Add(duration).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия и возвращает owner_id.
func ParseToken(secret, raw string) (uuid.UUID, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	if typ, _ := claims["token_type"].(string); typ != "access" {
		return uuid.Nil, fmt.Errorf("%w: token_type %q", ErrInvalidToken, typ)
	}
	raw, _ = claims["owner_id"].(string)
	ownerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: owner_id: %v", ErrInvalidToken, err)
	}
	return ownerID, nil
}
