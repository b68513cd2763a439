package ports

import (
	"context"

	"github.com/upstart/api/internal/core/domain"
)

// UserRepository lookups return (nil, nil) when no user matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller domain.Caller, input UpdateProfileInput) (*domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
