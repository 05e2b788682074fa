package services

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/auth"
	"github.com/golang-jwt/jwt/v5"

	"studybuddy/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// IdentityProvider verifies bearer tokens and owns the sign-in accounts.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (model.Identity, error)
	// DeleteIdentity removes the sign-in account. Missing accounts are not an error.
	DeleteIdentity(ctx context.Context, uid string) error
}

type FirebaseVerifier struct {
	client *auth.Client
}

var _ IdentityProvider = (*FirebaseVerifier)(nil)

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (model.Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id := model.Identity{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := tok.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}

func (v *FirebaseVerifier) DeleteIdentity(ctx context.Context, uid string) error {
	err := v.client.DeleteUser(ctx, uid)
	if err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("delete auth user: %w", err)
	}
	return nil
}

// JWTVerifier accepts HS256 tokens minted by CreateAccessToken. It is meant for
// local development, so there is no account to delete.
type JWTVerifier struct {
	secret []byte
}

var _ IdentityProvider = (*JWTVerifier)(nil)

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (model.Identity, error) {
	claims := &model.AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(TokenIssuer))
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return model.Identity{}, fmt.Errorf("%w: missing userId claim", ErrInvalidToken)
	}
	return model.Identity{UID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}

func (v *JWTVerifier) DeleteIdentity(context.Context, string) error {
	return nil
}
