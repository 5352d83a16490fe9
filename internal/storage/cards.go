package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/validator"
)

const selectCards = `
	SELECT id, question,
		COALESCE(option_a, '') AS option_a,
		COALESCE(option_b, '') AS option_b,
		COALESCE(option_c, '') AS option_c,
		COALESCE(option_d, '') AS option_d,
		COALESCE(option_e, '') AS option_e,
		COALESCE(correct_answer, '') AS correct_answer,
		COALESCE(blank_answer, '') AS blank_answer,
		question_type, subject, difficulty,
		COALESCE(image_path, '') AS image_path,
		created_at, updated_at
	FROM cards
`

const insertCardQuery = `
	INSERT INTO cards (question, option_a, option_b, option_c, option_d, option_e,
		correct_answer, blank_answer, question_type, subject, difficulty, image_path)
	VALUES (:question, :option_a, :option_b, :option_c, :option_d, :option_e,
		:correct_answer, :blank_answer, :question_type, :subject, :difficulty, :image_path)
`

func prepareCard(op string, card domain.Card) (domain.Card, error) {
	card = card.WithDefaults()
	if err := validator.ValidateStruct(card); err != nil {
		return card, invalidErr(op, err)
	}
	return card, nil
}

// CreateCard inserts a card and returns its new id.
// created_at and updated_at are stamped by the database.
func (s *Store) CreateCard(ctx context.Context, card domain.Card) (int64, error) {
	card, err := prepareCard("create card", card)
	if err != nil {
		return 0, err
	}

	db, err := s.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	id, err := insertCard(ctx, db, card)
	if err != nil {
		return 0, statementErr("insert card", err)
	}
	return id, nil
}

// CreateCards inserts a batch of cards in one transaction.
// Either every card is stored or none is. Ids are returned in input order.
func (s *Store) CreateCards(ctx context.Context, cards []domain.Card) ([]int64, error) {
	prepared := make([]domain.Card, len(cards))
	for i, card := range cards {
		c, err := prepareCard(fmt.Sprintf("create card %d of %d", i+1, len(cards)), card)
		if err != nil {
			return nil, err
		}
		prepared[i] = c
	}

	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ids := make([]int64, 0, len(prepared))
	err = withTx(ctx, db, "insert cards", func(tx *sqlx.Tx) error {
		for _, card := range prepared {
			id, err := insertCard(ctx, tx, card)
			if err != nil {
				return statementErr("insert card", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func insertCard(ctx context.Context, e sqlx.ExtContext, card domain.Card) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, e, insertCardQuery, card)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListCards returns every card, most recently created first.
func (s *Store) ListCards(ctx context.Context) ([]domain.Card, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cards := []domain.Card{}
	err = db.SelectContext(ctx, &cards, selectCards+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, statementErr("list cards", err)
	}
	return cards, nil
}

// ListCardsBySubject returns the cards whose subject matches exactly (case-sensitive),
// in the same order as ListCards.
func (s *Store) ListCardsBySubject(ctx context.Context, subject string) ([]domain.Card, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cards := []domain.Card{}
	err = db.SelectContext(ctx, &cards, selectCards+` WHERE subject = ? ORDER BY created_at DESC, id DESC`, subject)
	if err != nil {
		return nil, statementErr(fmt.Sprintf("list cards for subject %q", subject), err)
	}
	return cards, nil
}

// GetCard retrieves a single card by id.
func (s *Store) GetCard(ctx context.Context, id int64) (domain.Card, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return domain.Card{}, err
	}
	defer db.Close()

	var card domain.Card
	err = db.GetContext(ctx, &card, selectCards+` WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, notFoundErr("get card", id)
		}
		return domain.Card{}, statementErr(fmt.Sprintf("get card %d", id), err)
	}
	return card, nil
}

// UpdateCard overwrites every mutable field of the card with the given id
// and refreshes updated_at. It returns a KindNotFound error if no card matched.
func (s *Store) UpdateCard(ctx context.Context, id int64, card domain.Card) error {
	card, err := prepareCard("update card", card)
	if err != nil {
		return err
	}
	card.ID = id

	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.NamedExecContext(ctx, `
		UPDATE cards
		SET question = :question, option_a = :option_a, option_b = :option_b,
			option_c = :option_c, option_d = :option_d, option_e = :option_e,
			correct_answer = :correct_answer, blank_answer = :blank_answer,
			question_type = :question_type, subject = :subject,
			difficulty = :difficulty, image_path = :image_path,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = :id
	`, card)
	if err != nil {
		return statementErr(fmt.Sprintf("update card %d", id), err)
	}
	return expectOneRow(res, "update card", id)
}

// DeleteCard removes the card and every attempt referencing it in one
// transaction, attempts first. It returns a KindNotFound error, with nothing
// removed, if the card does not exist.
func (s *Store) DeleteCard(ctx context.Context, id int64) error {
	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var removedAttempts int64
	err = withTx(ctx, db, "delete card", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM attempts WHERE card_id = ?`, id)
		if err != nil {
			return statementErr(fmt.Sprintf("delete attempts for card %d", id), err)
		}
		if removedAttempts, err = res.RowsAffected(); err != nil {
			return statementErr(fmt.Sprintf("delete attempts for card %d", id), err)
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
		if err != nil {
			return statementErr(fmt.Sprintf("delete card %d", id), err)
		}
		return expectOneRow(res, "delete card", id)
	})
	if err != nil {
		return err
	}

	s.log.Info("card deleted", zap.Int64("card_id", id), zap.Int64("attempts_removed", removedAttempts))
	return nil
}

func expectOneRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return statementErr(fmt.Sprintf("%s %d", op, id), err)
	}
	if n == 0 {
		return notFoundErr(op, id)
	}
	return nil
}
