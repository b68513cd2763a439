package ports

import (
	"context"
	"time"

	"github.com/upstart/api/internal/core/domain"
)

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.Loan, error)
}

type CreateLoanInput struct {
	Amount         float64
	InterestRate   float64
	TermMonths     int
	StartDate      *time.Time
	OriginationFee float64
	LateFee        float64
}

type LoanService interface {
	Create(ctx context.Context, caller domain.Caller, input CreateLoanInput) (*domain.Loan, error)
	ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Loan, error)
}
