package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"studyhub/internal/auth"
	"studyhub/internal/config"
	"studyhub/internal/models"
	"studyhub/internal/storage"
)

// AuthService handles registration, login and token revocation.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, tokenString string) error
}

type authService struct {
	users     storage.UserRepository
	authCfg   config.AuthConfig
	blacklist auth.TokenBlacklist
}

// NewAuthService creates an AuthService. blacklist may be nil; logout then
// degrades to a no-op and tokens expire naturally.
func NewAuthService(users storage.UserRepository, authCfg config.AuthConfig, blacklist auth.TokenBlacklist) AuthService {
	return &authService{users: users, authCfg: authCfg, blacklist: blacklist}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < 8 {
		return nil, "", fmt.Errorf("%w: name, email and a password of at least 8 characters are required", ErrValidation)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Name, s.authCfg)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	log.Info().Uint("user", user.ID).Str("email", email).Msg("user registered")
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Name, s.authCfg)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Logout revokes the token by blacklisting its jti until it would have
// expired anyway.
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := auth.ValidateToken(ctx, tokenString, s.authCfg.JWTSecretKey, s.blacklist)
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	if s.blacklist == nil {
		return nil
	}

	exp := claims.ExpiresAt.Time
	if time.Until(exp) <= 0 {
		return nil
	}
	if err := s.blacklist.Add(ctx, claims.ID, exp); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	log.Info().Uint("user", claims.UserID).Msg("user logged out")
	return nil
}
