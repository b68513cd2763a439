package services

import (
	"context"
	"fmt"
	"time"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
	"github.com/upstart/api/internal/sanitize"
)

type pollAnswerService struct {
	pollRepo   ports.PollRepository
	answerRepo ports.PollAnswerRepository
	now        func() time.Time
}

func NewPollAnswerService(pollRepo ports.PollRepository, answerRepo ports.PollAnswerRepository) ports.PollAnswerService {
	return &pollAnswerService{
		pollRepo:   pollRepo,
		answerRepo: answerRepo,
		now:        utcNow,
	}
}

// Create appends an answer to a poll the caller owns. A non-positive display
// order places it after the current last answer.
func (s *pollAnswerService) Create(ctx context.Context, caller domain.Caller, input ports.CreateAnswerInput) (*domain.PollAnswer, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}
	if !poll.IsOwnedBy(caller.UserID) {
		return nil, domain.ErrNotPollOwner
	}

	text := sanitize.Text(input.AnswerText)
	if text == "" {
		return nil, domain.ErrAnswerRequired
	}

	order := input.DisplayOrder
	if order <= 0 {
		order = 1
		for _, a := range poll.Answers {
			if a.DisplayOrder >= order {
				order = a.DisplayOrder + 1
			}
		}
	}

	now := s.now()
	answer := &domain.PollAnswer{
		PollID:       poll.ID,
		AnswerText:   text,
		DisplayOrder: order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to create poll answer: %w", err)
	}
	return answer, nil
}

func (s *pollAnswerService) ListByPoll(ctx context.Context, pollID int64) ([]domain.PollAnswer, error) {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return nil, err
	}
	return s.answerRepo.ListByPoll(ctx, pollID)
}

func (s *pollAnswerService) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	if !caller.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	answer, err := s.answerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	poll, err := s.pollRepo.GetByID(ctx, answer.PollID)
	if err != nil {
		return err
	}
	if !poll.IsOwnedBy(caller.UserID) {
		return domain.ErrNotPollOwner
	}
	if err := s.answerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete poll answer: %w", err)
	}
	return nil
}
