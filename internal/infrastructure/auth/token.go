// Package auth issues and verifies the HS256 tokens carried by API callers.
//
// User management lives outside this service; tokens are minted by the
// identity provider (or by tooling/tests through GenerateToken) and only
// verified here.
package auth

import (
	"errors"
	"fmt"
	"time"

	"vitta_logistica/internal/domain/entities"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken mints a token for the given principal.
func GenerateToken(secret []byte, p entities.Principal, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  p.ID,
		"name": p.Name,
		"role": string(p.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// VerifyToken validates signature and expiry and extracts the principal.
// A token with an unknown role fails verification outright.
func VerifyToken(secret []byte, tokenString string) (entities.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return entities.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entities.Principal{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	roleStr, _ := claims["role"].(string)
	role := entities.Role(roleStr)
	if sub == "" || !role.Valid() {
		return entities.Principal{}, ErrInvalidToken
	}

	return entities.Principal{ID: sub, Name: name, Role: role}, nil
}
