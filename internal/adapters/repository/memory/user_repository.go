package memory

import (
	"context"
	"time"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) ports.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	user.ID = r.store.nextID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.store.users[user.ID] = copyUser(user)
	return nil
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.FirstName = copyString(u.FirstName)
	c.LastName = copyString(u.LastName)
	return &c
}
