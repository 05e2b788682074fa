package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studybuddy/model"
)

const TokenIssuer = "studybuddy"

// CreateAccessToken signs a development token for id, valid for ttl.
func CreateAccessToken(secret string, id model.Identity, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not set")
	}
	now := time.Now()
	claims := &model.AccessClaims{
		UserID: id.UID,
		Email:  id.Email,
		Name:   id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
