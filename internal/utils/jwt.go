package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type accessClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT carrying the principal's username and
// role. The role travels as a signed claim, so it cannot be forged by the
// client.
func GenerateToken(secret, username, role string, ttl time.Duration) (string, error) {
	claims := &accessClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the embedded username and role.
func ParseToken(secret, tokenString string) (username, role string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", err
	}

	if claims, ok := token.Claims.(*accessClaims); ok && token.Valid {
		return claims.Username, claims.Role, nil
	}

	return "", "", jwt.ErrTokenInvalidClaims
}
