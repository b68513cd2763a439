package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	constraintUsersEmail       = "uq_users_email"
	constraintPollResponseUser = "uq_poll_responses_poll_user"
)

// isUniqueViolation reports whether err is postgres rejecting a write under
// the named unique constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == constraint
}
