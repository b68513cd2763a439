package http

import (
	"net/http"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

// VoteHandler serves poll responses, exposed as poll-stats.
type VoteHandler struct {
	service ports.PollResponseService
}

func NewVoteHandler(service ports.PollResponseService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	PollID       int64 `json:"pollId" validate:"required,gt=0"`
	PollAnswerID int64 `json:"pollAnswerId" validate:"required,gt=0"`
}

type changeVoteRequest struct {
	PollAnswerID int64 `json:"pollAnswerId" validate:"required,gt=0"`
}

// Vote godoc
// @Summary      Records the authenticated user's vote
// @Tags         poll-stats
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.PollResponse
// @Failure      400
// @Failure      401
// @Failure      404
// @Router       /poll-stats [post]
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, callerFrom(r.Context()))
}

// VoteAnonymous godoc
// @Summary      Records an anonymous vote
// @Description  The vote is tied to the session cookie, which is issued when missing.
// @Tags         poll-stats
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.PollResponse
// @Failure      400
// @Failure      404
// @Router       /poll-stats/anonymous [post]
func (h *VoteHandler) VoteAnonymous(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	caller := callerFrom(r.Context())
	minted := false
	if !caller.IsAuthenticated() {
		caller, minted = sessionCaller(r)
	}
	h.record(w, r, caller, req, minted)
}

func (h *VoteHandler) submit(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	var req voteRequest
	if !decodeValid(w, r, &req) {
		return
	}
	h.record(w, r, caller, req, false)
}

// record submits the vote. A freshly minted session cookie is only sent with
// a successful response.
func (h *VoteHandler) record(w http.ResponseWriter, r *http.Request, caller domain.Caller, req voteRequest, mintedSession bool) {
	response, err := h.service.Submit(r.Context(), caller, ports.SubmitResponseInput{
		PollID:       req.PollID,
		PollAnswerID: req.PollAnswerID,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if mintedSession {
		setSessionCookie(w, r, caller.SessionID)
	}
	writeJSON(w, http.StatusCreated, response)
}

// ChangeVote godoc
// @Summary      Changes the selected answer of the caller's vote
// @Tags         poll-stats
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.PollResponse
// @Failure      401
// @Failure      403
// @Failure      404
// @Router       /poll-stats/{id} [put]
func (h *VoteHandler) ChangeVote(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid response id")
		return
	}

	var req changeVoteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	response, err := h.service.Update(r.Context(), callerFrom(r.Context()), id, req.PollAnswerID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	pollID, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	response, err := h.service.GetMine(r.Context(), callerFrom(r.Context()), pollID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// Results godoc
// @Summary      Aggregated vote counts of a poll
// @Tags         poll-stats
// @Produce      json
// @Success      200  {object}  domain.PollResults
// @Failure      404
// @Router       /poll-stats/poll/{id}/results [get]
func (h *VoteHandler) Results(w http.ResponseWriter, r *http.Request) {
	pollID, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	results, err := h.service.Results(r.Context(), pollID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
