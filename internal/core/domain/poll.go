package domain

import (
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID                     int64        `json:"id"`
	PollGUID               uuid.UUID    `json:"pollGuid"`
	UserID                 *int64       `json:"userId"`
	SessionID              *string      `json:"sessionId"`
	Question               string       `json:"question"`
	IsActive               bool         `json:"isActive"`
	IsMultipleChoice       bool         `json:"isMultipleChoice"`
	RequiresAuthentication bool         `json:"requiresAuthentication"`
	ExpiresAt              *time.Time   `json:"expiresAt,omitempty"`
	CreatedAt              time.Time    `json:"createdAt"`
	UpdatedAt              time.Time    `json:"updatedAt"`
	Answers                []PollAnswer `json:"answers"`
}

type PollAnswer struct {
	ID           int64     `json:"id"`
	PollID       int64     `json:"pollId"`
	AnswerText   string    `json:"answerText"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID is the poll's owning user. Session-owned
// polls are never owned by a user until migrated.
func (p *Poll) IsOwnedBy(userID int64) bool {
	return userID > 0 && p.UserID != nil && *p.UserID == userID
}

func (p *Poll) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// CheckOpen returns the reason a poll cannot accept responses at now, or nil.
func (p *Poll) CheckOpen(now time.Time) error {
	if !p.IsActive {
		return ErrPollInactive
	}
	if p.IsExpired(now) {
		return ErrPollExpired
	}
	return nil
}

func (p *Poll) HasAnswer(answerID int64) bool {
	for _, a := range p.Answers {
		if a.ID == answerID {
			return true
		}
	}
	return false
}

// PollFilter selects polls for the listing views.
type PollFilter struct {
	ActiveOnly     bool
	PublicOnly     bool
	OwnerUserID    int64
	OwnerSessionID string
	Now            time.Time
	Limit          int
	Offset         int
}
