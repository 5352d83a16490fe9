package storage

import (
	"context"
	"sort"
	"time"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/fsrs"
)

// DueCard is a card together with the review state its attempts produce.
type DueCard struct {
	domain.Card
	Schedule fsrs.CardState `json:"schedule"`
}

// DueCards replays each card's attempt log through the store's scheduler and
// returns the cards due at now, earliest due date first. Cards that were
// never answered have no due date and come first.
func (s *Store) DueCards(ctx context.Context, now time.Time) ([]DueCard, error) {
	cards, err := s.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	attempts, err := s.ListAttempts(ctx)
	if err != nil {
		return nil, err
	}

	byCard := make(map[int64][]domain.Attempt, len(cards))
	for _, attempt := range attempts {
		byCard[attempt.CardID] = append(byCard[attempt.CardID], attempt)
	}

	due := []DueCard{}
	for _, card := range cards {
		state := fsrs.Replay(s.scheduler, byCard[card.ID])
		if state.IsDue(now) {
			due = append(due, DueCard{Card: card, Schedule: state})
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Schedule.Due.Before(due[j].Schedule.Due)
	})
	return due, nil
}
