package memory

import (
	"context"
	"sort"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type loanRepository struct {
	store *Store
}

func NewLoanRepository(store *Store) ports.LoanRepository {
	return &loanRepository{store: store}
}

func (r *loanRepository) Create(_ context.Context, loan *domain.Loan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[loan.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	loan.ID = r.store.nextID()
	stored := *loan
	r.store.loans[loan.ID] = &stored
	return nil
}

func (r *loanRepository) ListByUser(_ context.Context, userID int64) ([]*domain.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	loans := []*domain.Loan{}
	for _, l := range r.store.loans {
		if l.UserID == userID {
			c := *l
			loans = append(loans, &c)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID > loans[j].ID })
	return loans, nil
}
