package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

type pollAnswerRepository struct {
	db *sql.DB
}

func NewPollAnswerRepository(db *sql.DB) ports.PollAnswerRepository {
	return &pollAnswerRepository{db: db}
}

func (r *pollAnswerRepository) Create(ctx context.Context, answer *domain.PollAnswer) error {
	query := `
		INSERT INTO poll_answers (poll_id, answer_text, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		answer.PollID, answer.AnswerText, answer.DisplayOrder, answer.CreatedAt, answer.UpdatedAt,
	).Scan(&answer.ID)
	if err != nil {
		return fmt.Errorf("failed to insert poll answer: %w", err)
	}
	return nil
}

func (r *pollAnswerRepository) GetByID(ctx context.Context, id int64) (*domain.PollAnswer, error) {
	query := `
		SELECT id, poll_id, answer_text, display_order, created_at, updated_at
		FROM poll_answers
		WHERE id = $1
	`
	var a domain.PollAnswer
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.PollID, &a.AnswerText, &a.DisplayOrder, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get poll answer: %w", err)
	}
	return &a, nil
}

func (r *pollAnswerRepository) ListByPoll(ctx context.Context, pollID int64) ([]domain.PollAnswer, error) {
	return fetchAnswers(ctx, r.db, pollID)
}

func (r *pollAnswerRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM poll_answers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll answer: %w", err)
	}
	return expectOneRow(res, domain.ErrAnswerNotFound)
}

func (r *pollAnswerRepository) ReplaceForPoll(ctx context.Context, pollID int64, answers []domain.PollAnswer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM poll_answers WHERE poll_id = $1`, pollID); err != nil {
		return fmt.Errorf("failed to delete poll answers: %w", err)
	}

	if err := insertAnswers(ctx, tx, pollID, answers); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertAnswers(ctx context.Context, tx *sql.Tx, pollID int64, answers []domain.PollAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	queryAnswer := `
		INSERT INTO poll_answers (poll_id, answer_text, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, queryAnswer)
	if err != nil {
		return fmt.Errorf("failed to prepare answer statement: %w", err)
	}
	defer stmt.Close()

	for i := range answers {
		a := &answers[i]
		a.PollID = pollID
		err := stmt.QueryRowContext(ctx, a.PollID, a.AnswerText, a.DisplayOrder, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func fetchAnswers(ctx context.Context, q queryer, pollID int64) ([]domain.PollAnswer, error) {
	query := `
		SELECT id, poll_id, answer_text, display_order, created_at, updated_at
		FROM poll_answers
		WHERE poll_id = $1
		ORDER BY display_order, id
	`
	rows, err := q.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll answers: %w", err)
	}
	defer rows.Close()

	answers := []domain.PollAnswer{}
	for rows.Next() {
		var a domain.PollAnswer
		if err := rows.Scan(&a.ID, &a.PollID, &a.AnswerText, &a.DisplayOrder, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}
	return answers, nil
}
