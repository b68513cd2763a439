package http

import (
	"net/http"
	"time"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type LoanHandler struct {
	service ports.LoanService
}

func NewLoanHandler(service ports.LoanService) *LoanHandler {
	return &LoanHandler{
		service: service,
	}
}

type createLoanRequest struct {
	Amount         float64    `json:"amount" validate:"required,gt=0,lte=999999999999.99"`
	InterestRate   float64    `json:"interestRate" validate:"gte=0,lte=100"`
	TermMonths     int        `json:"termMonths" validate:"required,gt=0,lte=600"`
	StartDate      *time.Time `json:"startDate"`
	OriginationFee float64    `json:"originationFee" validate:"gte=0,lte=999999999999.99"`
	LateFee        float64    `json:"lateFee" validate:"gte=0,lte=999999999999.99"`
}

func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if !decodeValid(w, r, &req) {
		return
	}

	loan, err := h.service.Create(r.Context(), callerFrom(r.Context()), ports.CreateLoanInput{
		Amount:         req.Amount,
		InterestRate:   req.InterestRate,
		TermMonths:     req.TermMonths,
		StartDate:      req.StartDate,
		OriginationFee: req.OriginationFee,
		LateFee:        req.LateFee,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListMine(r.Context(), callerFrom(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if loans == nil {
		loans = []*domain.Loan{}
	}
	writeJSON(w, http.StatusOK, loans)
}
