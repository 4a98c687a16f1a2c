package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"storeapi/internal/apperr"
	"storeapi/internal/models"
	"storeapi/internal/repositories"
)

// UserService is the user store: it owns email normalisation, uniqueness
// and password hashing on top of the user repository.
type UserService struct {
	repo repositories.UserRepository
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService creates a UserService hashing passwords with the given bcrypt cost.
func NewUserService(repo repositories.UserRepository, cost int) *UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{
		repo: repo,
		cost: cost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new user. It fails with apperr.ErrEmailTaken when the
// email is already registered, whether caught up front or by the unique index.
func (s *UserService) Create(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, apperr.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		FullName: strings.TrimSpace(req.FullName),
		Password: string(hashed),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrEmailTaken.WrapParent(err)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// FindByEmail returns the user registered under email, or nil.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

// FindByID returns the user with the given id, or nil.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

// ComparePassword reports whether plaintext matches the user's stored hash.
// A nil user is compared against a throwaway hash of the same cost and never
// matches, so unknown emails take as long as wrong passwords.
func (s *UserService) ComparePassword(user *models.User, plaintext string) bool {
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(plaintext)) == nil
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storeapi-timing-equalizer"), s.cost)
	})
	return s.dummyHash
}
