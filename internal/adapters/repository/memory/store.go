// Package memory implements the repository ports in process memory. It mirrors
// the relational schema's unique and cascade rules so services behave the same
// as against postgres; it backs the "memory" database type and the tests.
package memory

import (
	"sync"

	"github.com/upstart/api/internal/core/domain"
)

type Store struct {
	mu sync.Mutex

	users     map[int64]*domain.User
	polls     map[int64]*domain.Poll
	answers   map[int64]*domain.PollAnswer
	responses map[int64]*domain.PollResponse
	loans     map[int64]*domain.Loan

	lastID int64
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]*domain.User),
		polls:     make(map[int64]*domain.Poll),
		answers:   make(map[int64]*domain.PollAnswer),
		responses: make(map[int64]*domain.PollResponse),
		loans:     make(map[int64]*domain.Loan),
	}
}

// nextID must be called with mu held. Ids are unique across tables.
func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

func copyInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
