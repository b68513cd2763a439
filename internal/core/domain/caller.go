package domain

// Caller is the identity a request acts on behalf of. UserID is set for
// authenticated callers; SessionID carries the anonymous session cookie and may
// be present alongside a user id.
type Caller struct {
	UserID    int64
	SessionID string
}

func (c Caller) IsAuthenticated() bool {
	return c.UserID > 0
}

func (c Caller) HasSession() bool {
	return c.SessionID != ""
}

func AnonymousCaller(sessionID string) Caller {
	return Caller{SessionID: sessionID}
}

func UserCaller(userID int64) Caller {
	return Caller{UserID: userID}
}
