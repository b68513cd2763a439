package domain

import "time"

type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanActive    LoanStatus = "active"
	LoanPaidOff   LoanStatus = "paid_off"
	LoanDefaulted LoanStatus = "defaulted"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanPending, LoanActive, LoanPaidOff, LoanDefaulted:
		return true
	}
	return false
}

// MaxLoanMoney is the largest amount or fee a loan column (NUMERIC(14,2)) holds.
const MaxLoanMoney = 999_999_999_999.99

type Loan struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	Amount         float64    `json:"amount"`
	InterestRate   float64    `json:"interestRate"`
	TermMonths     int        `json:"termMonths"`
	Status         LoanStatus `json:"status"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	OriginationFee float64    `json:"originationFee"`
	LateFee        float64    `json:"lateFee"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
