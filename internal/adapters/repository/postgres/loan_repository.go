package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) ports.LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (user_id, amount, interest_rate, term_months, status, start_date, end_date,
			origination_fee, late_fee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		loan.UserID, loan.Amount, loan.InterestRate, loan.TermMonths, string(loan.Status), loan.StartDate, loan.EndDate,
		loan.OriginationFee, loan.LateFee, loan.CreatedAt, loan.UpdatedAt,
	).Scan(&loan.ID)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}
	return nil
}

func (r *loanRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Loan, error) {
	query := `
		SELECT id, user_id, amount, interest_rate, term_months, status, start_date, end_date,
			origination_fee, late_fee, created_at, updated_at
		FROM loans
		WHERE user_id = $1
		ORDER BY id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	loans := []*domain.Loan{}
	for rows.Next() {
		var l domain.Loan
		var status string
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Amount, &l.InterestRate, &l.TermMonths, &status, &l.StartDate, &l.EndDate,
			&l.OriginationFee, &l.LateFee, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		l.Status = domain.LoanStatus(status)
		loans = append(loans, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loans: %w", err)
	}
	return loans, nil
}
