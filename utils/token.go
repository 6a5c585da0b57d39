package utils

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// TokenExpireDays is how long issued tokens stay valid. Overridable
// with JWT_EXPIRE_DAYS.
func TokenExpireDays() int {
	if v := os.Getenv("JWT_EXPIRE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			return days
		}
	}
	return 30
}

// GenerateToken signs a bearer token carrying the account id and
// role.
func GenerateToken(id, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"role": role,
		"exp":  time.Now().Add(time.Duration(TokenExpireDays()) * 24 * time.Hour).Unix(),
	})
	return token.SignedString(jwtSecret())
}

// ParseToken verifies the signature and expiry and returns the
// embedded id and role. Tokens issued before roles were added carry
// no role claim; those return an empty role and the caller falls back
// to scanning every account store.
func ParseToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}

	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", "", ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	return id, role, nil
}
