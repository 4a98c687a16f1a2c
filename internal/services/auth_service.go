package services

import (
	"context"
	"fmt"

	"storeapi/internal/apperr"
	"storeapi/internal/models"
)

// UserStore is what authentication needs from user persistence.
type UserStore interface {
	Create(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// ComparePassword must accept a nil user and return false for it.
	ComparePassword(user *models.User, plaintext string) bool
}

// AuthService handles sign-up and sign-in.
type AuthService struct {
	users  UserStore
	tokens TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// SignUp creates the account and returns a token for it. Store errors,
// including apperr.ErrEmailTaken, are returned as is.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AccessToken, error) {
	user, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user.ID)
}

// SignIn checks the credentials and returns a token. An unknown email and a
// wrong password both yield apperr.ErrInvalidCredentials after a password
// comparison, so neither the error nor the timing tells them apart.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.AccessToken, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	// ComparePassword(nil, ...) burns a hash comparison and reports false.
	if !s.users.ComparePassword(user, req.Password) || user == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return s.issue(ctx, user.ID)
}

func (s *AuthService) issue(ctx context.Context, userID string) (*models.AccessToken, error) {
	token, err := s.tokens.Sign(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.AccessToken{AccessToken: token}, nil
}
