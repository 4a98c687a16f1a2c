package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"storeapi/internal/apperr"
)

// TokenIssuer mints access tokens for a user id.
type TokenIssuer interface {
	Sign(ctx context.Context, userID string) (string, error)
}

// Claims is the verified content of an access token.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// JWTIssuer signs and verifies HS256 access tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer whose tokens stay valid for ttl.
func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign returns a signed token carrying the user id and an expiry.
func (i *JWTIssuer) Sign(_ context.Context, userID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(i.ttl).Unix(),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string.
func (i *JWTIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, apperr.ErrInvalidToken.WrapParent(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperr.ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, apperr.ErrInvalidToken.WrapParent(fmt.Errorf("missing user_id claim"))
	}

	var expiresAt time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0)
	}
	return &Claims{UserID: userID, ExpiresAt: expiresAt}, nil
}
