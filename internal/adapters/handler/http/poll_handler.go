package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type createPollRequest struct {
	Question               string     `json:"question" validate:"required,max=500"`
	IsActive               *bool      `json:"isActive"`
	IsMultipleChoice       bool       `json:"isMultipleChoice"`
	RequiresAuthentication bool       `json:"requiresAuthentication"`
	ExpiresAt              *time.Time `json:"expiresAt"`
	Answers                []string   `json:"answers" validate:"omitempty,max=50,dive,max=500"`
}

type updatePollRequest struct {
	Question               *string    `json:"question" validate:"omitempty,min=1,max=500"`
	IsActive               *bool      `json:"isActive"`
	IsMultipleChoice       *bool      `json:"isMultipleChoice"`
	RequiresAuthentication *bool      `json:"requiresAuthentication"`
	ExpiresAt              *time.Time `json:"expiresAt"`
	ClearExpiration        bool       `json:"clearExpiration"`
}

type replaceAnswersRequest struct {
	Answers []string `json:"answers" validate:"required,min=2,max=50,dive,required,max=500"`
}

// CreatePoll godoc
// @Summary      Creates a poll
// @Description  Authenticated callers own the poll. Anonymous callers own it through the session cookie, which is issued when missing.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.Poll
// @Failure      400
// @Router       /polls [post]
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if !decodeValid(w, r, &req) {
		return
	}

	caller := callerFrom(r.Context())
	minted := false
	if !caller.IsAuthenticated() {
		caller, minted = sessionCaller(r)
	}

	poll, err := h.service.Create(r.Context(), caller, ports.CreatePollInput{
		Question:               req.Question,
		IsActive:               req.IsActive,
		IsMultipleChoice:       req.IsMultipleChoice,
		RequiresAuthentication: req.RequiresAuthentication,
		ExpiresAt:              req.ExpiresAt,
		Answers:                req.Answers,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if minted {
		setSessionCookie(w, r, caller.SessionID)
	}
	writeJSON(w, http.StatusCreated, poll)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	poll, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

// GetPollByGUID godoc
// @Summary      Fetches a poll by its public identifier
// @Tags         polls
// @Produce      json
// @Param        guid  path  string  true  "Poll GUID"
// @Success      200  {object}  domain.Poll
// @Failure      404
// @Router       /polls/guid/{guid} [get]
func (h *PollHandler) GetPollByGUID(w http.ResponseWriter, r *http.Request) {
	guid, err := uuid.Parse(chi.URLParam(r, "guid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid poll guid")
		return
	}

	poll, err := h.service.GetByGUID(r.Context(), guid)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(input ports.ListPollsInput) ([]*domain.Poll, error) {
		return h.service.ListActive(r.Context(), input)
	})
}

func (h *PollHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(input ports.ListPollsInput) ([]*domain.Poll, error) {
		return h.service.ListPublic(r.Context(), input)
	})
}

// ListOwned lists the caller's polls, by user when authenticated and by
// session cookie otherwise.
func (h *PollHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(input ports.ListPollsInput) ([]*domain.Poll, error) {
		return h.service.ListOwned(r.Context(), callerFrom(r.Context()), input)
	})
}

func (h *PollHandler) list(w http.ResponseWriter, r *http.Request, fetch func(ports.ListPollsInput) ([]*domain.Poll, error)) {
	limit, ok := intQuery(r, "limit", 0)
	if !ok {
		writeValidationProblem(w, map[string][]string{"limit": {"The limit field must be a non-negative integer."}})
		return
	}
	offset, ok := intQuery(r, "offset", 0)
	if !ok {
		writeValidationProblem(w, map[string][]string{"offset": {"The offset field must be a non-negative integer."}})
		return
	}

	polls, err := fetch(ports.ListPollsInput{Limit: limit, Offset: offset})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if polls == nil {
		polls = []*domain.Poll{}
	}
	writeJSON(w, http.StatusOK, polls)
}

// UpdatePoll godoc
// @Summary      Updates a poll
// @Description  Only the owning user may update a poll.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Poll
// @Failure      401
// @Failure      403
// @Failure      404
// @Router       /polls/{id} [put]
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	var req updatePollRequest
	if !decodeValid(w, r, &req) {
		return
	}

	poll, err := h.service.Update(r.Context(), callerFrom(r.Context()), id, ports.UpdatePollInput{
		Question:               req.Question,
		IsActive:               req.IsActive,
		IsMultipleChoice:       req.IsMultipleChoice,
		RequiresAuthentication: req.RequiresAuthentication,
		ExpiresAt:              req.ExpiresAt,
		ClearExpiration:        req.ClearExpiration,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

// ReplaceAnswers godoc
// @Summary      Replaces every answer of a poll
// @Description  Answers are stored in request order with displayOrder starting at 1.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Poll
// @Failure      400
// @Failure      403
// @Router       /polls/{id}/answers [put]
func (h *PollHandler) ReplaceAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	var req replaceAnswersRequest
	if !decodeValid(w, r, &req) {
		return
	}

	poll, err := h.service.ReplaceAnswers(r.Context(), callerFrom(r.Context()), id, req.Answers)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	if err := h.service.Delete(r.Context(), callerFrom(r.Context()), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
