package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialexplore/config"
	"socialexplore/internal/auth"
	"socialexplore/internal/domain"
	"socialexplore/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
)

// UserStore is the slice of the user repository AuthService needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	cfg   *config.JWTConfig
	users UserStore
	now   func() time.Time
}

func NewAuthService(cfg *config.JWTConfig, users UserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, name, email, password, bio string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Bio:          bio,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	access, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Email, s.now())
	if err != nil {
		return u, "", err
	}
	return u, access, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCreds
	}
	access, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Email, s.now())
	if err != nil {
		return nil, "", err
	}
	return u, access, nil
}
