package ports

import (
	"context"

	"github.com/upstart/api/internal/core/domain"
)

type PollAnswerRepository interface {
	Create(ctx context.Context, answer *domain.PollAnswer) error
	GetByID(ctx context.Context, id int64) (*domain.PollAnswer, error)
	ListByPoll(ctx context.Context, pollID int64) ([]domain.PollAnswer, error)
	Delete(ctx context.Context, id int64) error
	// ReplaceForPoll deletes every answer of the poll and inserts answers in
	// one transaction, filling in their ids and timestamps.
	ReplaceForPoll(ctx context.Context, pollID int64, answers []domain.PollAnswer) error
}

type CreateAnswerInput struct {
	PollID       int64
	AnswerText   string
	DisplayOrder int
}

type PollAnswerService interface {
	Create(ctx context.Context, caller domain.Caller, input CreateAnswerInput) (*domain.PollAnswer, error)
	ListByPoll(ctx context.Context, pollID int64) ([]domain.PollAnswer, error)
	Delete(ctx context.Context, caller domain.Caller, id int64) error
}
