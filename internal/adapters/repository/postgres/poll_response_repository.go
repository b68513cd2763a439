package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type pollResponseRepository struct {
	db *sql.DB
}

func NewPollResponseRepository(db *sql.DB) ports.PollResponseRepository {
	return &pollResponseRepository{
		db: db,
	}
}

const responseColumns = `id, poll_id, poll_answer_id, user_id, session_id, selected_at`

// Create maps the (poll_id, user_id) unique violation to ErrAlreadyResponded so
// a concurrent duplicate vote fails the same way as the service pre-check.
func (r *pollResponseRepository) Create(ctx context.Context, response *domain.PollResponse) error {
	query := `
		INSERT INTO poll_responses (poll_id, poll_answer_id, user_id, session_id, selected_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		response.PollID, response.PollAnswerID, response.UserID, response.SessionID, response.SelectedAt,
	).Scan(&response.ID)
	if err != nil {
		if isUniqueViolation(err, constraintPollResponseUser) {
			return domain.ErrAlreadyResponded
		}
		return fmt.Errorf("failed to save poll response: %w", err)
	}
	return nil
}

func (r *pollResponseRepository) GetByID(ctx context.Context, id int64) (*domain.PollResponse, error) {
	query := `SELECT ` + responseColumns + ` FROM poll_responses WHERE id = $1`
	resp, err := r.getOne(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, domain.ErrResponseNotFound
	}
	return resp, nil
}

func (r *pollResponseRepository) GetByPollAndUser(ctx context.Context, pollID, userID int64) (*domain.PollResponse, error) {
	query := `SELECT ` + responseColumns + ` FROM poll_responses WHERE poll_id = $1 AND user_id = $2`
	return r.getOne(ctx, query, pollID, userID)
}

func (r *pollResponseRepository) GetLatestByPollAndSession(ctx context.Context, pollID int64, sessionID string) (*domain.PollResponse, error) {
	query := `
		SELECT ` + responseColumns + `
		FROM poll_responses
		WHERE poll_id = $1 AND session_id = $2
		ORDER BY selected_at DESC, id DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, pollID, sessionID)
}

func (r *pollResponseRepository) getOne(ctx context.Context, query string, args ...any) (*domain.PollResponse, error) {
	var resp domain.PollResponse
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&resp.ID, &resp.PollID, &resp.PollAnswerID, &resp.UserID, &resp.SessionID, &resp.SelectedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get poll response: %w", err)
	}
	return &resp, nil
}

func (r *pollResponseRepository) UpdateAnswer(ctx context.Context, id, pollAnswerID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE poll_responses SET poll_answer_id = $2 WHERE id = $1`, id, pollAnswerID)
	if err != nil {
		return fmt.Errorf("failed to update poll response: %w", err)
	}
	return expectOneRow(res, domain.ErrResponseNotFound)
}

func (r *pollResponseRepository) CountByAnswer(ctx context.Context, pollID int64) ([]domain.AnswerCount, error) {
	query := `
		SELECT a.id, a.answer_text, a.display_order, COUNT(pr.id)
		FROM poll_answers a
		LEFT JOIN poll_responses pr ON pr.poll_answer_id = a.id
		WHERE a.poll_id = $1
		GROUP BY a.id, a.answer_text, a.display_order
		ORDER BY a.display_order, a.id
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	defer rows.Close()

	counts := []domain.AnswerCount{}
	for rows.Next() {
		var c domain.AnswerCount
		if err := rows.Scan(&c.PollAnswerID, &c.AnswerText, &c.DisplayOrder, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return counts, nil
}
