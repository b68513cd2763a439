package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type AuthService struct {
	userRepo            ports.UserRepository
	pollRepo            ports.PollRepository
	hasher              ports.PasswordHasher
	tokens              ports.TokenManager
	googleTokenVerifier ports.TokenVerifier
	googleClientID      string
}

// NewAuthService wires authentication. googleTokenVerifier may be nil, in which
// case Google sign-in is reported as disabled.
func NewAuthService(
	userRepo ports.UserRepository,
	pollRepo ports.PollRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenManager,
	googleTokenVerifier ports.TokenVerifier,
	googleClientID string,
) *AuthService {
	return &AuthService{
		userRepo:            userRepo,
		pollRepo:            pollRepo,
		hasher:              hasher,
		tokens:              tokens,
		googleTokenVerifier: googleTokenVerifier,
		googleClientID:      googleClientID,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput, caller domain.Caller) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.InfoContext(ctx, "user registered", "user_id", user.ID)

	return s.signIn(ctx, user, caller)
}

// Login fails with the same error for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput, caller domain.Caller) (*ports.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !s.hasher.Compare(user.PasswordHash, input.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.signIn(ctx, user, caller)
}

// LoginWithGoogle signs in with a Google ID token, creating a password-less
// user the first time an email is seen.
func (s *AuthService) LoginWithGoogle(ctx context.Context, credential string, caller domain.Caller) (*ports.AuthResult, error) {
	if s.googleTokenVerifier == nil || s.googleClientID == "" {
		return nil, domain.ErrGoogleDisabled
	}

	payload, err := s.googleTokenVerifier.Verify(ctx, credential, s.googleClientID)
	if err != nil {
		slog.DebugContext(ctx, "google token rejected", "error", err)
		return nil, domain.ErrInvalidToken
	}

	email := domain.NormalizeEmail(payload.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		user = &domain.User{Email: email}
		first, last, _ := strings.Cut(strings.TrimSpace(payload.Name), " ")
		if first != "" {
			user.FirstName = &first
		}
		if last = strings.TrimSpace(last); last != "" {
			user.LastName = &last
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.InfoContext(ctx, "user registered with google", "user_id", user.ID)
	}

	return s.signIn(ctx, user, caller)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*ports.TokenClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		slog.DebugContext(ctx, "access token rejected", "error", err)
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// signIn moves the caller's anonymous polls to user and issues a token.
func (s *AuthService) signIn(ctx context.Context, user *domain.User, caller domain.Caller) (*ports.AuthResult, error) {
	var migrated int64
	if caller.HasSession() {
		n, err := s.pollRepo.MigrateSession(ctx, caller.SessionID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate session polls: %w", err)
		}
		if n > 0 {
			slog.InfoContext(ctx, "session polls migrated", "user_id", user.ID, "polls", n)
		}
		migrated = n
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &ports.AuthResult{
		Token:         token,
		ExpiresAt:     expiresAt,
		User:          user,
		MigratedPolls: migrated,
	}, nil
}
