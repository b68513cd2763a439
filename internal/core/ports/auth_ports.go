package ports

import (
	"context"
	"time"

	"github.com/upstart/api/internal/core/domain"
)

// TokenClaims is what an access token asserts about its bearer.
type TokenClaims struct {
	UserID    int64
	Email     string
	FirstName string
	LastName  string
	ExpiresAt time.Time
}

type TokenManager interface {
	Issue(user *domain.User) (string, time.Time, error)
	Parse(token string) (*TokenClaims, error)
}

type TokenPayload struct {
	Email string
	Name  string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string, clientID string) (*TokenPayload, error)
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token         string       `json:"token"`
	ExpiresAt     time.Time    `json:"expiresAt"`
	User          *domain.User `json:"user"`
	MigratedPolls int64        `json:"migratedPolls"`
}

// AuthService authenticates users. The caller's session, when present, has its
// polls migrated to the authenticated user.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput, caller domain.Caller) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput, caller domain.Caller) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, credential string, caller domain.Caller) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*TokenClaims, error)
}
