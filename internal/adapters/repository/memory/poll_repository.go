package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type pollRepository struct {
	store *Store
}

func NewPollRepository(store *Store) ports.PollRepository {
	return &pollRepository{store: store}
}

func (r *pollRepository) Create(_ context.Context, poll *domain.Poll) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	poll.ID = r.store.nextID()
	stored := *poll
	stored.Answers = nil
	stored.UserID = copyInt64(poll.UserID)
	stored.SessionID = copyString(poll.SessionID)
	r.store.polls[poll.ID] = &stored

	for i := range poll.Answers {
		a := &poll.Answers[i]
		a.ID = r.store.nextID()
		a.PollID = poll.ID
		stored := *a
		r.store.answers[a.ID] = &stored
	}
	return nil
}

func (r *pollRepository) GetByID(_ context.Context, id int64) (*domain.Poll, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return r.withAnswers(p), nil
}

func (r *pollRepository) GetByGUID(_ context.Context, guid uuid.UUID) (*domain.Poll, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.polls {
		if p.PollGUID == guid {
			return r.withAnswers(p), nil
		}
	}
	return nil, domain.ErrPollNotFound
}

// List returns matching polls newest first.
func (r *pollRepository) List(_ context.Context, filter domain.PollFilter) ([]*domain.Poll, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []*domain.Poll
	for _, p := range r.store.polls {
		if filter.ActiveOnly && (!p.IsActive || p.IsExpired(filter.Now)) {
			continue
		}
		if filter.PublicOnly && p.RequiresAuthentication {
			continue
		}
		if filter.OwnerUserID > 0 && !p.IsOwnedBy(filter.OwnerUserID) {
			continue
		}
		if filter.OwnerSessionID != "" && (p.SessionID == nil || *p.SessionID != filter.OwnerSessionID) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	polls := make([]*domain.Poll, 0, len(matched))
	for i := filter.Offset; i < len(matched) && (filter.Limit <= 0 || len(polls) < filter.Limit); i++ {
		polls = append(polls, r.withAnswers(matched[i]))
	}
	return polls, nil
}

func (r *pollRepository) Update(_ context.Context, poll *domain.Poll) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.polls[poll.ID]; !ok {
		return domain.ErrPollNotFound
	}
	stored := *poll
	stored.Answers = nil
	stored.UserID = copyInt64(poll.UserID)
	stored.SessionID = copyString(poll.SessionID)
	r.store.polls[poll.ID] = &stored
	return nil
}

// Delete removes the poll with its answers and responses.
func (r *pollRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(r.store.polls, id)
	for aid, a := range r.store.answers {
		if a.PollID == id {
			delete(r.store.answers, aid)
		}
	}
	for rid, resp := range r.store.responses {
		if resp.PollID == id {
			delete(r.store.responses, rid)
		}
	}
	return nil
}

func (r *pollRepository) MigrateSession(_ context.Context, sessionID string, userID int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	now := time.Now().UTC()
	for _, p := range r.store.polls {
		if p.UserID != nil || p.SessionID == nil || *p.SessionID != sessionID {
			continue
		}
		uid := userID
		p.UserID = &uid
		p.SessionID = nil
		p.UpdatedAt = now
		n++
	}
	return n, nil
}

// withAnswers must be called with mu held.
func (r *pollRepository) withAnswers(p *domain.Poll) *domain.Poll {
	c := *p
	c.UserID = copyInt64(p.UserID)
	c.SessionID = copyString(p.SessionID)
	c.Answers = answersOf(r.store, p.ID)
	return &c
}

// answersOf must be called with mu held.
func answersOf(s *Store, pollID int64) []domain.PollAnswer {
	answers := []domain.PollAnswer{}
	for _, a := range s.answers {
		if a.PollID == pollID {
			answers = append(answers, *a)
		}
	}
	sort.Slice(answers, func(i, j int) bool {
		if answers[i].DisplayOrder == answers[j].DisplayOrder {
			return answers[i].ID < answers[j].ID
		}
		return answers[i].DisplayOrder < answers[j].DisplayOrder
	})
	return answers
}
