package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
	"github.com/upstart/api/internal/sanitize"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type pollService struct {
	repo       ports.PollRepository
	answerRepo ports.PollAnswerRepository
	now        func() time.Time
}

func NewPollService(repo ports.PollRepository, answerRepo ports.PollAnswerRepository) ports.PollService {
	return &pollService{
		repo:       repo,
		answerRepo: answerRepo,
		now:        utcNow,
	}
}

func (s *pollService) Create(ctx context.Context, caller domain.Caller, input ports.CreatePollInput) (*domain.Poll, error) {
	question := sanitize.Text(input.Question)
	if question == "" {
		return nil, domain.ErrQuestionRequired
	}

	now := s.now()
	poll := &domain.Poll{
		PollGUID:               uuid.New(),
		Question:               question,
		IsActive:               true,
		IsMultipleChoice:       input.IsMultipleChoice,
		RequiresAuthentication: input.RequiresAuthentication,
		ExpiresAt:              input.ExpiresAt,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if input.IsActive != nil {
		poll.IsActive = *input.IsActive
	}

	switch {
	case caller.IsAuthenticated():
		userID := caller.UserID
		poll.UserID = &userID
	case caller.HasSession():
		sessionID := caller.SessionID
		poll.SessionID = &sessionID
	default:
		return nil, domain.ErrMissingOwner
	}

	poll.Answers = buildAnswers(input.Answers, now)

	if err := s.repo.Create(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}
	return poll, nil
}

func (s *pollService) GetByID(ctx context.Context, id int64) (*domain.Poll, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *pollService) GetByGUID(ctx context.Context, guid uuid.UUID) (*domain.Poll, error) {
	return s.repo.GetByGUID(ctx, guid)
}

func (s *pollService) ListActive(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	limit, offset := page(input)
	return s.repo.List(ctx, domain.PollFilter{
		ActiveOnly: true,
		Now:        s.now(),
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *pollService) ListPublic(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	limit, offset := page(input)
	return s.repo.List(ctx, domain.PollFilter{
		ActiveOnly: true,
		PublicOnly: true,
		Now:        s.now(),
		Limit:      limit,
		Offset:     offset,
	})
}

// ListOwned lists the caller's polls: by user when authenticated, otherwise by
// session. A caller with neither owns nothing.
func (s *pollService) ListOwned(ctx context.Context, caller domain.Caller, input ports.ListPollsInput) ([]*domain.Poll, error) {
	limit, offset := page(input)
	filter := domain.PollFilter{Now: s.now(), Limit: limit, Offset: offset}
	switch {
	case caller.IsAuthenticated():
		filter.OwnerUserID = caller.UserID
	case caller.HasSession():
		filter.OwnerSessionID = caller.SessionID
	default:
		return []*domain.Poll{}, nil
	}
	return s.repo.List(ctx, filter)
}

func (s *pollService) Update(ctx context.Context, caller domain.Caller, id int64, input ports.UpdatePollInput) (*domain.Poll, error) {
	poll, err := s.ownedPoll(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updated := *poll
	if input.Question != nil {
		question := sanitize.Text(*input.Question)
		if question == "" {
			return nil, domain.ErrQuestionRequired
		}
		updated.Question = question
	}
	if input.IsActive != nil {
		updated.IsActive = *input.IsActive
	}
	if input.IsMultipleChoice != nil {
		updated.IsMultipleChoice = *input.IsMultipleChoice
	}
	if input.RequiresAuthentication != nil {
		updated.RequiresAuthentication = *input.RequiresAuthentication
	}
	if input.ClearExpiration {
		updated.ExpiresAt = nil
	} else if input.ExpiresAt != nil {
		updated.ExpiresAt = input.ExpiresAt
	}
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update poll: %w", err)
	}
	return &updated, nil
}

func (s *pollService) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	if _, err := s.ownedPoll(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return nil
}

func (s *pollService) ReplaceAnswers(ctx context.Context, caller domain.Caller, id int64, answers []string) (*domain.Poll, error) {
	poll, err := s.ownedPoll(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	replacement := buildAnswers(answers, s.now())
	if len(replacement) < 2 {
		return nil, domain.ErrTooFewAnswers
	}
	if err := s.answerRepo.ReplaceForPoll(ctx, poll.ID, replacement); err != nil {
		return nil, fmt.Errorf("failed to replace answers: %w", err)
	}

	updated := *poll
	updated.Answers = replacement
	for i := range updated.Answers {
		updated.Answers[i].PollID = poll.ID
	}
	return &updated, nil
}

func (s *pollService) ownedPoll(ctx context.Context, caller domain.Caller, id int64) (*domain.Poll, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	poll, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !poll.IsOwnedBy(caller.UserID) {
		return nil, domain.ErrNotPollOwner
	}
	return poll, nil
}

// buildAnswers keeps non-empty texts in input order and numbers them from 1.
func buildAnswers(texts []string, now time.Time) []domain.PollAnswer {
	answers := make([]domain.PollAnswer, 0, len(texts))
	for _, text := range texts {
		text = sanitize.Text(text)
		if text == "" {
			continue
		}
		answers = append(answers, domain.PollAnswer{
			AnswerText:   text,
			DisplayOrder: len(answers) + 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return answers
}

func page(input ports.ListPollsInput) (limit, offset int) {
	limit = input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset = input.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func utcNow() time.Time {
	return time.Now().UTC()
}
