package domain

import "errors"

// Kind classifies a domain failure so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrPollNotFound     = NotFound("poll not found")
	ErrAnswerNotFound   = NotFound("poll answer not found")
	ErrResponseNotFound = NotFound("poll response not found")
	ErrUserNotFound     = NotFound("user not found")

	ErrPollInactive     = InvalidState("poll is not active")
	ErrPollExpired      = InvalidState("poll has expired")
	ErrAuthRequired     = InvalidState("this poll requires authentication")
	ErrAlreadyResponded = InvalidState("user has already responded to this poll")
	ErrAnswerNotInPoll  = InvalidState("answer does not belong to this poll")
	ErrEmailTaken       = InvalidState("a user with this email already exists")
	ErrMissingVoter     = InvalidState("a user or session is required to respond")
	ErrMissingOwner     = InvalidState("a user or session is required to create a poll")
	ErrQuestionRequired = InvalidState("question is required")
	ErrAnswerRequired   = InvalidState("answer text is required")
	ErrTooFewAnswers    = InvalidState("at least two valid answers are required")
	ErrGoogleDisabled   = InvalidState("google sign-in is not configured")
	ErrPasswordTooLong  = InvalidState("password must not exceed 72 bytes")

	ErrInvalidCredentials = Unauthorized("invalid email or password")
	ErrUnauthenticated    = Unauthorized("authentication required")
	ErrInvalidToken       = Unauthorized("invalid or expired token")

	ErrNotPollOwner     = Forbidden("only the poll owner can modify this poll")
	ErrNotResponseOwner = Forbidden("this response belongs to another participant")
)
