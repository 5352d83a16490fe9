package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/testdeck/internal/domain"
)

func TestCheckIntegrity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	report, err := s.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, IntegrityReport{Valid: true}, report, "empty store")

	cardID, err := s.CreateCard(ctx, mathCard())
	require.NoError(t, err)
	sessionID, err := s.CreateSession(ctx, domain.Session{StartedAt: testNow(), TotalQuestions: 3})
	require.NoError(t, err)

	for _, attempt := range []domain.Attempt{
		{SessionID: sessionID, CardID: cardID, UserAnswer: "B", IsCorrect: true},
		{SessionID: sessionID, CardID: 999, UserAnswer: "x"},
		{SessionID: 777, CardID: cardID, UserAnswer: "A"},
	} {
		_, err := s.RecordAttempt(ctx, attempt)
		require.NoError(t, err)
	}

	report, err = s.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Attempts)
	assert.Equal(t, 1, report.MissingCard)
	assert.Equal(t, 1, report.MissingSession)
	assert.False(t, report.Valid)
}

func TestCleanupOrphans(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	keep, err := s.CreateCard(ctx, mathCard())
	require.NoError(t, err)
	sessionID, err := s.CreateSession(ctx, domain.Session{StartedAt: testNow(), TotalQuestions: 2})
	require.NoError(t, err)

	_, err = s.RecordAttempt(ctx, domain.Attempt{SessionID: sessionID, CardID: keep, UserAnswer: "B", IsCorrect: true})
	require.NoError(t, err)
	_, err = s.RecordAttempt(ctx, domain.Attempt{SessionID: 777, CardID: keep, UserAnswer: "A"})
	require.NoError(t, err)

	// Same dangling attempt the delete path leaves alone.
	_, err = s.RecordAttempt(ctx, domain.Attempt{SessionID: sessionID, CardID: 999, UserAnswer: "x"})
	require.NoError(t, err)
	assert.Equal(t, KindNotFound, KindOf(s.DeleteCard(ctx, 999)))

	removed, err := s.CleanupOrphans(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	dangling, err := s.ListAttemptsByCard(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, dangling)

	kept, err := s.ListAttemptsByCard(ctx, keep)
	require.NoError(t, err)
	assert.Len(t, kept, 2, "attempts with a missing session keep their card")

	report, err := s.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.MissingCard)
	assert.Equal(t, 1, report.MissingSession)

	t.Run("second run removes nothing", func(t *testing.T) {
		removed, err := s.CleanupOrphans(ctx)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}
