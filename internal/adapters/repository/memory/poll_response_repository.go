package memory

import (
	"context"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type pollResponseRepository struct {
	store *Store
}

func NewPollResponseRepository(store *Store) ports.PollResponseRepository {
	return &pollResponseRepository{store: store}
}

func (r *pollResponseRepository) Create(_ context.Context, response *domain.PollResponse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.polls[response.PollID]; !ok {
		return domain.ErrPollNotFound
	}
	if _, ok := r.store.answers[response.PollAnswerID]; !ok {
		return domain.ErrAnswerNotFound
	}
	if response.UserID != nil {
		for _, existing := range r.store.responses {
			if existing.PollID == response.PollID && existing.UserID != nil && *existing.UserID == *response.UserID {
				return domain.ErrAlreadyResponded
			}
		}
	}

	response.ID = r.store.nextID()
	r.store.responses[response.ID] = copyResponse(response)
	return nil
}

func (r *pollResponseRepository) GetByID(_ context.Context, id int64) (*domain.PollResponse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	resp, ok := r.store.responses[id]
	if !ok {
		return nil, domain.ErrResponseNotFound
	}
	return copyResponse(resp), nil
}

func (r *pollResponseRepository) GetByPollAndUser(_ context.Context, pollID, userID int64) (*domain.PollResponse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, resp := range r.store.responses {
		if resp.PollID == pollID && resp.UserID != nil && *resp.UserID == userID {
			return copyResponse(resp), nil
		}
	}
	return nil, nil
}

func (r *pollResponseRepository) GetLatestByPollAndSession(_ context.Context, pollID int64, sessionID string) (*domain.PollResponse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var latest *domain.PollResponse
	for _, resp := range r.store.responses {
		if resp.PollID != pollID || resp.SessionID == nil || *resp.SessionID != sessionID {
			continue
		}
		if latest == nil || resp.ID > latest.ID {
			latest = resp
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyResponse(latest), nil
}

func (r *pollResponseRepository) UpdateAnswer(_ context.Context, id, pollAnswerID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	resp, ok := r.store.responses[id]
	if !ok {
		return domain.ErrResponseNotFound
	}
	if _, ok := r.store.answers[pollAnswerID]; !ok {
		return domain.ErrAnswerNotFound
	}
	resp.PollAnswerID = pollAnswerID
	return nil
}

// CountByAnswer includes answers nobody picked, ordered by display order.
func (r *pollResponseRepository) CountByAnswer(_ context.Context, pollID int64) ([]domain.AnswerCount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tally := make(map[int64]int64)
	for _, resp := range r.store.responses {
		if resp.PollID == pollID {
			tally[resp.PollAnswerID]++
		}
	}

	answers := answersOf(r.store, pollID)
	counts := make([]domain.AnswerCount, 0, len(answers))
	for _, a := range answers {
		counts = append(counts, domain.AnswerCount{
			PollAnswerID: a.ID,
			AnswerText:   a.AnswerText,
			DisplayOrder: a.DisplayOrder,
			Count:        tally[a.ID],
		})
	}
	return counts, nil
}

func copyResponse(r *domain.PollResponse) *domain.PollResponse {
	c := *r
	c.UserID = copyInt64(r.UserID)
	c.SessionID = copyString(r.SessionID)
	return &c
}
