package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/knol"
	"github.com/conorfennell/testdeck/internal/validator"
)

// Snapshot is a full copy of the stored history. Ids are those of the store
// it was taken from and only link its own rows together.
type Snapshot struct {
	Cards    []domain.Card
	Sessions []domain.Session
	Attempts []domain.Attempt
}

// RestoreResult counts what a restore added and what it left alone.
type RestoreResult struct {
	CardsAdded      int `json:"cards_added"`
	CardsSkipped    int `json:"cards_skipped"`
	SessionsAdded   int `json:"sessions_added"`
	SessionsSkipped int `json:"sessions_skipped"`
	AttemptsAdded   int `json:"attempts_added"`
	AttemptsSkipped int `json:"attempts_skipped"`
	Invalid         int `json:"invalid"`
}

// Restore merges a snapshot into the store in one transaction.
//
// A card is skipped when a stored card has the same fingerprint; its attempts
// are attached to the stored card. A session is skipped when one with the
// same start time, type and size exists, and its attempts are skipped with
// it. Attempts whose card or session is neither in the snapshot nor stored
// are skipped. Invalid rows are counted and left out.
func (s *Store) Restore(ctx context.Context, snap Snapshot) (RestoreResult, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return RestoreResult{}, err
	}
	defer db.Close()

	var result RestoreResult
	err = withTx(ctx, db, "restore", func(tx *sqlx.Tx) error {
		result = RestoreResult{}

		cardIDs, err := restoreCards(ctx, tx, snap.Cards, &result)
		if err != nil {
			return err
		}
		sessionIDs, err := restoreSessions(ctx, tx, snap.Sessions, &result)
		if err != nil {
			return err
		}

		for _, attempt := range snap.Attempts {
			sessionID, okSession := sessionIDs[attempt.SessionID]
			cardID, okCard := cardIDs[attempt.CardID]
			if !okSession || !okCard {
				result.AttemptsSkipped++
				continue
			}
			attempt.SessionID, attempt.CardID = sessionID, cardID
			if attempt.AttemptedAt.IsZero() {
				attempt.AttemptedAt = time.Now()
			}
			if err := validator.ValidateStruct(attempt); err != nil {
				result.Invalid++
				continue
			}
			if _, err := insertAttempt(ctx, tx, attempt); err != nil {
				return err
			}
			result.AttemptsAdded++
		}
		return nil
	})
	if err != nil {
		return RestoreResult{}, err
	}

	s.log.Info("snapshot restored",
		zap.Int("cards_added", result.CardsAdded),
		zap.Int("sessions_added", result.SessionsAdded),
		zap.Int("attempts_added", result.AttemptsAdded),
		zap.Int("invalid", result.Invalid),
	)
	return result, nil
}

// restoreCards returns a map from snapshot card id to stored card id.
func restoreCards(ctx context.Context, tx *sqlx.Tx, cards []domain.Card, result *RestoreResult) (map[int64]int64, error) {
	var existing []domain.Card
	if err := tx.SelectContext(ctx, &existing, selectCards); err != nil {
		return nil, statementErr("list cards", err)
	}
	known := make(map[string]int64, len(existing)+len(cards))
	for _, card := range existing {
		known[knol.Fingerprint(card)] = card.ID
	}

	ids := make(map[int64]int64, len(cards))
	for _, card := range cards {
		prepared, err := prepareCard("restore card", card)
		if err != nil {
			result.Invalid++
			continue
		}

		fingerprint := knol.Fingerprint(prepared)
		if id, ok := known[fingerprint]; ok {
			ids[card.ID] = id
			result.CardsSkipped++
			continue
		}

		id, err := insertRestoredCard(ctx, tx, prepared)
		if err != nil {
			return nil, statementErr("restore card", err)
		}
		known[fingerprint] = id
		ids[card.ID] = id
		result.CardsAdded++
	}
	return ids, nil
}

// insertRestoredCard keeps the card's own timestamps when it has them.
func insertRestoredCard(ctx context.Context, tx *sqlx.Tx, card domain.Card) (int64, error) {
	now := time.Now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	if card.UpdatedAt.IsZero() {
		card.UpdatedAt = card.CreatedAt
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO cards (question, option_a, option_b, option_c, option_d, option_e,
			correct_answer, blank_answer, question_type, subject, difficulty, image_path,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.Question, card.OptionA, card.OptionB, card.OptionC, card.OptionD, card.OptionE,
		card.CorrectAnswer, card.BlankAnswer, card.QuestionType, card.Subject, card.Difficulty, card.ImagePath,
		formatTime(card.CreatedAt), formatTime(card.UpdatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// restoreSessions returns a map from snapshot session id to the id of each session it inserted.
func restoreSessions(ctx context.Context, tx *sqlx.Tx, sessions []domain.Session, result *RestoreResult) (map[int64]int64, error) {
	var existing []domain.Session
	if err := tx.SelectContext(ctx, &existing, selectSessions); err != nil {
		return nil, statementErr("list sessions", err)
	}
	seen := make(map[string]bool, len(existing)+len(sessions))
	for _, session := range existing {
		seen[sessionKey(session)] = true
	}

	ids := make(map[int64]int64, len(sessions))
	for _, session := range sessions {
		if session.SessionType == "" {
			session.SessionType = domain.Practice
		}
		if err := validator.ValidateStruct(session); err != nil {
			result.Invalid++
			continue
		}

		key := sessionKey(session)
		if seen[key] {
			result.SessionsSkipped++
			continue
		}

		id, err := insertSession(ctx, tx, session)
		if err != nil {
			return nil, err
		}
		seen[key] = true
		ids[session.ID] = id
		result.SessionsAdded++
	}
	return ids, nil
}

func sessionKey(session domain.Session) string {
	return fmt.Sprintf("%s|%s|%d", formatTime(session.StartedAt), session.SessionType, session.TotalQuestions)
}
