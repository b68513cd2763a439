package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

const pollColumns = `id, poll_guid, user_id, session_id, question, is_active, is_multiple_choice,
	requires_authentication, expires_at, created_at, updated_at`

func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (poll_guid, user_id, session_id, question, is_active, is_multiple_choice,
			requires_authentication, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, queryPoll,
		poll.PollGUID, poll.UserID, poll.SessionID, poll.Question, poll.IsActive, poll.IsMultipleChoice,
		poll.RequiresAuthentication, poll.ExpiresAt, poll.CreatedAt, poll.UpdatedAt,
	).Scan(&poll.ID)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	if err := insertAnswers(ctx, tx, poll.ID, poll.Answers); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id int64) (*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *pollRepository) GetByGUID(ctx context.Context, guid uuid.UUID) (*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE poll_guid = $1`
	return r.getOne(ctx, query, guid)
}

func (r *pollRepository) getOne(ctx context.Context, query string, arg any) (*domain.Poll, error) {
	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	answers, err := fetchAnswers(ctx, r.db, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Answers = answers

	return poll, nil
}

func (r *pollRepository) List(ctx context.Context, filter domain.PollFilter) ([]*domain.Poll, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ActiveOnly {
		conds = append(conds, "is_active", "(expires_at IS NULL OR expires_at >= "+arg(filter.Now)+")")
	}
	if filter.PublicOnly {
		conds = append(conds, "NOT requires_authentication")
	}
	if filter.OwnerUserID > 0 {
		conds = append(conds, "user_id = "+arg(filter.OwnerUserID))
	}
	if filter.OwnerSessionID != "" {
		conds = append(conds, "session_id = "+arg(filter.OwnerSessionID))
	}

	query := `SELECT ` + pollColumns + ` FROM polls`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}
	query += ` OFFSET ` + arg(filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	polls := []*domain.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	rows.Close()

	for _, poll := range polls {
		answers, err := fetchAnswers(ctx, r.db, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Answers = answers
	}
	return polls, nil
}

func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	query := `
		UPDATE polls
		SET question = $2, is_active = $3, is_multiple_choice = $4,
			requires_authentication = $5, expires_at = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		poll.ID, poll.Question, poll.IsActive, poll.IsMultipleChoice,
		poll.RequiresAuthentication, poll.ExpiresAt, poll.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	return expectOneRow(res, domain.ErrPollNotFound)
}

// Delete relies on ON DELETE CASCADE for answers and responses.
func (r *pollRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return expectOneRow(res, domain.ErrPollNotFound)
}

func (r *pollRepository) MigrateSession(ctx context.Context, sessionID string, userID int64) (int64, error) {
	query := `
		UPDATE polls SET user_id = $1, session_id = NULL, updated_at = NOW()
		WHERE session_id = $2 AND user_id IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, userID, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to migrate session polls: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var poll domain.Poll
	err := row.Scan(
		&poll.ID, &poll.PollGUID, &poll.UserID, &poll.SessionID, &poll.Question, &poll.IsActive,
		&poll.IsMultipleChoice, &poll.RequiresAuthentication, &poll.ExpiresAt, &poll.CreatedAt, &poll.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &poll, nil
}
