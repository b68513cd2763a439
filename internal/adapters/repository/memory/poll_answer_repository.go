package memory

import (
	"context"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type pollAnswerRepository struct {
	store *Store
}

func NewPollAnswerRepository(store *Store) ports.PollAnswerRepository {
	return &pollAnswerRepository{store: store}
}

func (r *pollAnswerRepository) Create(_ context.Context, answer *domain.PollAnswer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.polls[answer.PollID]; !ok {
		return domain.ErrPollNotFound
	}
	answer.ID = r.store.nextID()
	stored := *answer
	r.store.answers[answer.ID] = &stored
	return nil
}

func (r *pollAnswerRepository) GetByID(_ context.Context, id int64) (*domain.PollAnswer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.answers[id]
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}
	c := *a
	return &c, nil
}

func (r *pollAnswerRepository) ListByPoll(_ context.Context, pollID int64) ([]domain.PollAnswer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return answersOf(r.store, pollID), nil
}

// Delete removes the answer and every response that selected it.
func (r *pollAnswerRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.answers[id]; !ok {
		return domain.ErrAnswerNotFound
	}
	r.deleteAnswer(id)
	return nil
}

func (r *pollAnswerRepository) ReplaceForPoll(_ context.Context, pollID int64, answers []domain.PollAnswer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.polls[pollID]; !ok {
		return domain.ErrPollNotFound
	}
	for id, a := range r.store.answers {
		if a.PollID == pollID {
			r.deleteAnswer(id)
		}
	}
	for i := range answers {
		answers[i].ID = r.store.nextID()
		answers[i].PollID = pollID
		stored := answers[i]
		r.store.answers[stored.ID] = &stored
	}
	return nil
}

// deleteAnswer must be called with mu held.
func (r *pollAnswerRepository) deleteAnswer(id int64) {
	delete(r.store.answers, id)
	for rid, resp := range r.store.responses {
		if resp.PollAnswerID == id {
			delete(r.store.responses, rid)
		}
	}
}
