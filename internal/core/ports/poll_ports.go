package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upstart/api/internal/core/domain"
)

// PollRepository loads polls together with their answers ordered by displayOrder.
type PollRepository interface {
	Create(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id int64) (*domain.Poll, error)
	GetByGUID(ctx context.Context, guid uuid.UUID) (*domain.Poll, error)
	List(ctx context.Context, filter domain.PollFilter) ([]*domain.Poll, error)
	Update(ctx context.Context, poll *domain.Poll) error
	Delete(ctx context.Context, id int64) error
	// MigrateSession rebinds every poll owned by sessionID and no user to userID
	// and returns how many polls moved.
	MigrateSession(ctx context.Context, sessionID string, userID int64) (int64, error)
}

type CreatePollInput struct {
	Question               string
	IsActive               *bool
	IsMultipleChoice       bool
	RequiresAuthentication bool
	ExpiresAt              *time.Time
	Answers                []string
}

type UpdatePollInput struct {
	Question               *string
	IsActive               *bool
	IsMultipleChoice       *bool
	RequiresAuthentication *bool
	ExpiresAt              *time.Time
	ClearExpiration        bool
}

type ListPollsInput struct {
	Limit  int
	Offset int
}

type PollService interface {
	Create(ctx context.Context, caller domain.Caller, input CreatePollInput) (*domain.Poll, error)
	GetByID(ctx context.Context, id int64) (*domain.Poll, error)
	GetByGUID(ctx context.Context, guid uuid.UUID) (*domain.Poll, error)
	ListActive(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	ListPublic(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	ListOwned(ctx context.Context, caller domain.Caller, input ListPollsInput) ([]*domain.Poll, error)
	Update(ctx context.Context, caller domain.Caller, id int64, input UpdatePollInput) (*domain.Poll, error)
	Delete(ctx context.Context, caller domain.Caller, id int64) error
	ReplaceAnswers(ctx context.Context, caller domain.Caller, id int64, answers []string) (*domain.Poll, error)
}
