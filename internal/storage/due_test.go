package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/fsrs"
)

func TestDueCards(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := testNow()

	fresh, err := s.CreateCard(ctx, mathCard())
	require.NoError(t, err)
	stale, err := s.CreateCard(ctx, mathCard())
	require.NoError(t, err)
	recent, err := s.CreateCard(ctx, mathCard())
	require.NoError(t, err)

	sessionID, err := s.CreateSession(ctx, domain.Session{StartedAt: now.Add(-72 * time.Hour), TotalQuestions: 2})
	require.NoError(t, err)
	for _, attempt := range []domain.Attempt{
		{SessionID: sessionID, CardID: stale, UserAnswer: "B", IsCorrect: true, AttemptedAt: now.Add(-48 * time.Hour)},
		{SessionID: sessionID, CardID: recent, UserAnswer: "B", IsCorrect: true, AttemptedAt: now.Add(-time.Minute)},
	} {
		_, err := s.RecordAttempt(ctx, attempt)
		require.NoError(t, err)
	}

	due, err := s.DueCards(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	assert.Equal(t, fresh, due[0].ID, "never answered cards come first")
	assert.Zero(t, due[0].Schedule.Reviews)
	assert.True(t, due[0].Schedule.Due.IsZero())

	assert.Equal(t, stale, due[1].ID)
	assert.Equal(t, 1, due[1].Schedule.Reviews)
	assert.Equal(t, 1, due[1].Schedule.Interval)
	assert.True(t, now.Add(-24*time.Hour).Equal(due[1].Schedule.Due), "due = %v", due[1].Schedule.Due)

	t.Run("recent card becomes due after its interval", func(t *testing.T) {
		later, err := s.DueCards(ctx, now.Add(25*time.Hour))
		require.NoError(t, err)
		ids := make([]int64, 0, len(later))
		for _, card := range later {
			ids = append(ids, card.ID)
		}
		assert.ElementsMatch(t, []int64{fresh, stale, recent}, ids)
	})

	t.Run("scheduler is configurable", func(t *testing.T) {
		fs, err := Open(ctx, s.Path(), nil, WithScheduler(fsrs.DefaultParams()))
		require.NoError(t, err)

		due, err := fs.DueCards(ctx, now)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, stale, due[1].ID)
		assert.NotZero(t, due[1].Schedule.Stability)
	})
}
