package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/souleimarejeb/rbac-app/internal/auth"
	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
	"github.com/souleimarejeb/rbac-app/internal/model"
	"github.com/souleimarejeb/rbac-app/internal/repository"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(encoded, plaintext string) (bool, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(claims auth.Claims, ttl time.Duration) (string, error)
}

// TokenPair is returned by sign-up and sign-in.
type TokenPair struct {
	AccessToken string `json:"access_token"`
}

// AuthService handles authentication operations.
type AuthService interface {
	SignUp(ctx context.Context, input model.NewUser) (*TokenPair, error)
	SignIn(ctx context.Context, creds model.Credentials) (*TokenPair, error)
	CreateAccessToken(username string) (*TokenPair, error)
}

type authService struct {
	users     repository.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	accessTTL time.Duration
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service. Tokens it issues
// expire after accessTTL.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, accessTTL time.Duration, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		accessTTL: accessTTL,
		logger:    logger.With(slog.String("component", "auth_service")),
	}
}

// SignUp hashes the password, persists the user and returns a token for it.
// A taken username or email is reported by the repository as a conflict.
func (s *authService) SignUp(ctx context.Context, input model.NewUser) (*TokenPair, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := input.User(hash)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID), slog.String("username", user.Username))

	return s.CreateAccessToken(user.Username)
}

// SignIn checks the credentials against the stored hash.
func (s *authService) SignIn(ctx context.Context, creds model.Credentials) (*TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, creds.Username)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(user.PasswordHash, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "sign in rejected", slog.String("username", creds.Username))
		return nil, apperrors.Authentication("password mismatch")
	}

	return s.CreateAccessToken(user.Username)
}

func (s *authService) CreateAccessToken(username string) (*TokenPair, error) {
	token, err := s.tokens.Issue(auth.NewClaims(username), s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &TokenPair{AccessToken: token}, nil
}
