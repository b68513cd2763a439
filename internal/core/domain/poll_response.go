package domain

import "time"

// PollResponse is one participant's selection, exposed over HTTP as a "poll stat".
type PollResponse struct {
	ID           int64     `json:"id"`
	PollID       int64     `json:"pollId"`
	PollAnswerID int64     `json:"pollAnswerId"`
	UserID       *int64    `json:"userId"`
	SessionID    *string   `json:"sessionId"`
	SelectedAt   time.Time `json:"selectedAt"`
}

// BelongsTo reports whether the response was cast by the caller, matching the
// user id when authenticated and the stored session otherwise.
func (r *PollResponse) BelongsTo(c Caller) bool {
	if c.IsAuthenticated() {
		return r.UserID != nil && *r.UserID == c.UserID
	}
	return c.HasSession() && r.SessionID != nil && *r.SessionID == c.SessionID
}

// AnswerCount is the live vote tally of one answer.
type AnswerCount struct {
	PollAnswerID int64
	AnswerText   string
	DisplayOrder int
	Count        int64
}

type AnswerResult struct {
	PollAnswerID int64   `json:"pollAnswerId"`
	AnswerText   string  `json:"answerText"`
	DisplayOrder int     `json:"displayOrder"`
	Count        int64   `json:"count"`
	Percentage   float64 `json:"percentage"`
}

type PollResults struct {
	PollID         int64          `json:"pollId"`
	Question       string         `json:"question"`
	TotalResponses int64          `json:"totalResponses"`
	Answers        []AnswerResult `json:"answers"`
}

// NewPollResults turns raw tallies into results. Percentages are 0..100 and
// are all zero when nobody has responded yet.
func NewPollResults(poll *Poll, counts []AnswerCount) *PollResults {
	var total int64
	for _, c := range counts {
		total += c.Count
	}

	results := &PollResults{
		PollID:         poll.ID,
		Question:       poll.Question,
		TotalResponses: total,
		Answers:        make([]AnswerResult, 0, len(counts)),
	}
	for _, c := range counts {
		percentage := 0.0
		if total > 0 {
			percentage = (float64(c.Count) / float64(total)) * 100
		}
		results.Answers = append(results.Answers, AnswerResult{
			PollAnswerID: c.PollAnswerID,
			AnswerText:   c.AnswerText,
			DisplayOrder: c.DisplayOrder,
			Count:        c.Count,
			Percentage:   percentage,
		})
	}
	return results
}
