package ports

import (
	"context"

	"github.com/upstart/api/internal/core/domain"
)

type PollResponseRepository interface {
	// Create returns domain.ErrAlreadyResponded when the store rejects a
	// second response from the same user.
	Create(ctx context.Context, response *domain.PollResponse) error
	GetByID(ctx context.Context, id int64) (*domain.PollResponse, error)
	GetByPollAndUser(ctx context.Context, pollID, userID int64) (*domain.PollResponse, error)
	GetLatestByPollAndSession(ctx context.Context, pollID int64, sessionID string) (*domain.PollResponse, error)
	UpdateAnswer(ctx context.Context, id, pollAnswerID int64) error
	CountByAnswer(ctx context.Context, pollID int64) ([]domain.AnswerCount, error)
}

type SubmitResponseInput struct {
	PollID       int64
	PollAnswerID int64
}

type PollResponseService interface {
	Submit(ctx context.Context, caller domain.Caller, input SubmitResponseInput) (*domain.PollResponse, error)
	Update(ctx context.Context, caller domain.Caller, responseID, pollAnswerID int64) (*domain.PollResponse, error)
	GetMine(ctx context.Context, caller domain.Caller, pollID int64) (*domain.PollResponse, error)
	Results(ctx context.Context, pollID int64) (*domain.PollResults, error)
}
