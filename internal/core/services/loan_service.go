package services

import (
	"context"
	"fmt"
	"time"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type loanService struct {
	repo ports.LoanRepository
	now  func() time.Time
}

func NewLoanService(repo ports.LoanRepository) ports.LoanService {
	return &loanService{repo: repo, now: utcNow}
}

func (s *loanService) Create(ctx context.Context, caller domain.Caller, input ports.CreateLoanInput) (*domain.Loan, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if input.Amount <= 0 {
		return nil, domain.InvalidState("loan amount must be positive")
	}
	if input.TermMonths <= 0 {
		return nil, domain.InvalidState("loan term must be at least one month")
	}
	if input.InterestRate < 0 || input.OriginationFee < 0 || input.LateFee < 0 {
		return nil, domain.InvalidState("rates and fees cannot be negative")
	}
	if input.Amount > domain.MaxLoanMoney || input.OriginationFee > domain.MaxLoanMoney || input.LateFee > domain.MaxLoanMoney {
		return nil, domain.InvalidState("loan amount and fees cannot exceed 999999999999.99")
	}

	now := s.now()
	start := now.Truncate(24 * time.Hour)
	if input.StartDate != nil {
		start = input.StartDate.UTC()
	}

	loan := &domain.Loan{
		UserID:         caller.UserID,
		Amount:         input.Amount,
		InterestRate:   input.InterestRate,
		TermMonths:     input.TermMonths,
		Status:         domain.LoanPending,
		StartDate:      start,
		EndDate:        start.AddDate(0, input.TermMonths, 0),
		OriginationFee: input.OriginationFee,
		LateFee:        input.LateFee,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}
	return loan, nil
}

func (s *loanService) ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Loan, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, caller.UserID)
}
