package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/validator"
)

const selectAttempts = `
	SELECT id, session_id, card_id, user_answer, is_correct,
		COALESCE(time_taken, 0) AS time_taken, attempted_at
	FROM attempts
`

// RecordAttempt appends an answer to the attempt log and returns its id.
// Session and card ids are not checked for existence.
func (s *Store) RecordAttempt(ctx context.Context, attempt domain.Attempt) (int64, error) {
	if err := validator.ValidateStruct(attempt); err != nil {
		return 0, invalidErr("record attempt", err)
	}
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}

	db, err := s.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return insertAttempt(ctx, db, attempt)
}

func insertAttempt(ctx context.Context, e sqlx.ExecerContext, attempt domain.Attempt) (int64, error) {
	res, err := e.ExecContext(ctx, `
		INSERT INTO attempts (session_id, card_id, user_answer, is_correct, time_taken, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		attempt.SessionID,
		attempt.CardID,
		attempt.UserAnswer,
		attempt.IsCorrect,
		attempt.TimeTaken,
		formatTime(attempt.AttemptedAt),
	)
	if err != nil {
		return 0, statementErr("insert attempt", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, statementErr("get last insert ID for attempt", err)
	}
	return id, nil
}

// ListAttemptsByCard returns the attempts made on a card, oldest first.
func (s *Store) ListAttemptsByCard(ctx context.Context, cardID int64) ([]domain.Attempt, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	attempts := []domain.Attempt{}
	err = db.SelectContext(ctx, &attempts, selectAttempts+` WHERE card_id = ? ORDER BY attempted_at, id`, cardID)
	if err != nil {
		return nil, statementErr(fmt.Sprintf("list attempts for card %d", cardID), err)
	}
	return attempts, nil
}

// ListAttempts returns the whole attempt log, oldest first.
func (s *Store) ListAttempts(ctx context.Context) ([]domain.Attempt, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	attempts := []domain.Attempt{}
	if err := db.SelectContext(ctx, &attempts, selectAttempts+` ORDER BY attempted_at, id`); err != nil {
		return nil, statementErr("list attempts", err)
	}
	return attempts, nil
}
