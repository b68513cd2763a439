package http

import (
	"net/http"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type PollAnswerHandler struct {
	service ports.PollAnswerService
}

func NewPollAnswerHandler(service ports.PollAnswerService) *PollAnswerHandler {
	return &PollAnswerHandler{
		service: service,
	}
}

type createAnswerRequest struct {
	PollID       int64  `json:"pollId" validate:"required,gt=0"`
	AnswerText   string `json:"answerText" validate:"required,max=500"`
	DisplayOrder int    `json:"displayOrder" validate:"omitempty,gt=0"`
}

// CreateAnswer godoc
// @Summary      Adds an answer to a poll
// @Description  Without displayOrder the answer is appended after the last one.
// @Tags         poll-answers
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.PollAnswer
// @Failure      403
// @Router       /poll-answers [post]
func (h *PollAnswerHandler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	var req createAnswerRequest
	if !decodeValid(w, r, &req) {
		return
	}

	answer, err := h.service.Create(r.Context(), callerFrom(r.Context()), ports.CreateAnswerInput{
		PollID:       req.PollID,
		AnswerText:   req.AnswerText,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

func (h *PollAnswerHandler) ListByPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := int64Param(r, "pollId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	answers, err := h.service.ListByPoll(r.Context(), pollID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if answers == nil {
		answers = []domain.PollAnswer{}
	}
	writeJSON(w, http.StatusOK, answers)
}

func (h *PollAnswerHandler) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid answer id")
		return
	}

	if err := h.service.Delete(r.Context(), callerFrom(r.Context()), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
