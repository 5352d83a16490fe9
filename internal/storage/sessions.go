package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/validator"
)

const selectSessions = `
	SELECT id, started_at, ended_at, total_questions, correct_answers, session_type
	FROM sessions
`

// CreateSession opens a session and returns its id.
// StartedAt is taken from the caller; the session starts without an end time or score.
func (s *Store) CreateSession(ctx context.Context, session domain.Session) (int64, error) {
	if session.SessionType == "" {
		session.SessionType = domain.Practice
	}
	if err := validator.ValidateStruct(session); err != nil {
		return 0, invalidErr("create session", err)
	}

	db, err := s.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	session.EndedAt, session.CorrectAnswers = nil, nil
	return insertSession(ctx, db, session)
}

func insertSession(ctx context.Context, e sqlx.ExecerContext, session domain.Session) (int64, error) {
	var endedAt, correctAnswers any
	if session.EndedAt != nil {
		endedAt = formatTime(*session.EndedAt)
	}
	if session.CorrectAnswers != nil {
		correctAnswers = *session.CorrectAnswers
	}

	res, err := e.ExecContext(ctx, `
		INSERT INTO sessions (started_at, ended_at, total_questions, correct_answers, session_type)
		VALUES (?, ?, ?, ?, ?)
	`,
		formatTime(session.StartedAt),
		endedAt,
		session.TotalQuestions,
		correctAnswers,
		session.SessionType,
	)
	if err != nil {
		return 0, statementErr("insert session", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, statementErr("get last insert ID for session", err)
	}
	return id, nil
}

// EndSession stamps ended_at with the database's current time and records
// the final score. Ending a session again overwrites both values.
func (s *Store) EndSession(ctx context.Context, sessionID int64, correctAnswers int) error {
	if correctAnswers < 0 {
		return invalidErr("end session", fmt.Errorf("correct answers must not be negative, got %d", correctAnswers))
	}

	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `
		UPDATE sessions
		SET ended_at = CURRENT_TIMESTAMP, correct_answers = ?
		WHERE id = ?
	`, correctAnswers, sessionID)
	if err != nil {
		return statementErr(fmt.Sprintf("end session %d", sessionID), err)
	}
	return expectOneRow(res, "end session", sessionID)
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id int64) (domain.Session, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	defer db.Close()

	var session domain.Session
	err = db.GetContext(ctx, &session, selectSessions+` WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, notFoundErr("get session", id)
		}
		return domain.Session{}, statementErr(fmt.Sprintf("get session %d", id), err)
	}
	return session, nil
}

// ListSessions returns every session, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	sessions := []domain.Session{}
	if err := db.SelectContext(ctx, &sessions, selectSessions+` ORDER BY started_at, id`); err != nil {
		return nil, statementErr("list sessions", err)
	}
	return sessions, nil
}
