package services

import (
	"context"
	"fmt"
	"time"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type pollResponseService struct {
	pollRepo     ports.PollRepository
	responseRepo ports.PollResponseRepository
	now          func() time.Time
}

func NewPollResponseService(pollRepo ports.PollRepository, responseRepo ports.PollResponseRepository) ports.PollResponseService {
	return &pollResponseService{
		pollRepo:     pollRepo,
		responseRepo: responseRepo,
		now:          utcNow,
	}
}

// Submit records a vote. Authenticated callers get one response per poll; the
// pre-check here is a fast path and the store's unique constraint is what
// actually holds under concurrent submissions. Anonymous callers are recorded
// against their session without a duplicate check.
func (s *pollResponseService) Submit(ctx context.Context, caller domain.Caller, input ports.SubmitResponseInput) (*domain.PollResponse, error) {
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := poll.CheckOpen(now); err != nil {
		return nil, err
	}
	if poll.RequiresAuthentication && !caller.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}
	if !poll.HasAnswer(input.PollAnswerID) {
		return nil, domain.ErrAnswerNotInPoll
	}

	response := &domain.PollResponse{
		PollID:       poll.ID,
		PollAnswerID: input.PollAnswerID,
		SelectedAt:   now,
	}

	if caller.IsAuthenticated() {
		existing, err := s.responseRepo.GetByPollAndUser(ctx, poll.ID, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing response: %w", err)
		}
		if existing != nil {
			return nil, domain.ErrAlreadyResponded
		}
		userID := caller.UserID
		response.UserID = &userID
	} else {
		if !caller.HasSession() {
			return nil, domain.ErrMissingVoter
		}
		sessionID := caller.SessionID
		response.SessionID = &sessionID
	}

	if err := s.responseRepo.Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save poll response: %w", err)
	}
	return response, nil
}

// Update changes the selected answer of a response the caller cast.
func (s *pollResponseService) Update(ctx context.Context, caller domain.Caller, responseID, pollAnswerID int64) (*domain.PollResponse, error) {
	if !caller.IsAuthenticated() && !caller.HasSession() {
		return nil, domain.ErrUnauthenticated
	}

	response, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if !response.BelongsTo(caller) {
		return nil, domain.ErrNotResponseOwner
	}

	poll, err := s.pollRepo.GetByID(ctx, response.PollID)
	if err != nil {
		return nil, err
	}
	if !poll.HasAnswer(pollAnswerID) {
		return nil, domain.ErrAnswerNotInPoll
	}

	if err := s.responseRepo.UpdateAnswer(ctx, response.ID, pollAnswerID); err != nil {
		return nil, fmt.Errorf("failed to update poll response: %w", err)
	}

	updated := *response
	updated.PollAnswerID = pollAnswerID
	return &updated, nil
}

func (s *pollResponseService) GetMine(ctx context.Context, caller domain.Caller, pollID int64) (*domain.PollResponse, error) {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return nil, err
	}

	var (
		response *domain.PollResponse
		err      error
	)
	switch {
	case caller.IsAuthenticated():
		response, err = s.responseRepo.GetByPollAndUser(ctx, pollID, caller.UserID)
	case caller.HasSession():
		response, err = s.responseRepo.GetLatestByPollAndSession(ctx, pollID, caller.SessionID)
	default:
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll response: %w", err)
	}
	if response == nil {
		return nil, domain.ErrResponseNotFound
	}
	return response, nil
}

// Results tallies live responses; nothing is cached between calls.
func (s *pollResponseService) Results(ctx context.Context, pollID int64) (*domain.PollResults, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	counts, err := s.responseRepo.CountByAnswer(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	return domain.NewPollResults(poll, counts), nil
}
