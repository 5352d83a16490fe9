package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/testdeck/internal/domain"
)

// testNow is the current time at the one-second resolution the store keeps.
func testNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	started := testNow().Add(-time.Hour)
	id, err := s.CreateSession(ctx, domain.Session{StartedAt: started, TotalQuestions: 10, SessionType: domain.Test})
	require.NoError(t, err)

	got, err := s.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.True(t, started.Equal(got.StartedAt), "started_at = %v, want %v", got.StartedAt, started)
	assert.Equal(t, 10, got.TotalQuestions)
	assert.Equal(t, domain.Test, got.SessionType)
	assert.False(t, got.Ended())
	assert.Nil(t, got.EndedAt)
	assert.Nil(t, got.CorrectAnswers)

	t.Run("session type defaults to practice", func(t *testing.T) {
		id, err := s.CreateSession(ctx, domain.Session{StartedAt: started, TotalQuestions: 1})
		require.NoError(t, err)
		got, err := s.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.Practice, got.SessionType)
	})

	t.Run("invalid sessions are rejected", func(t *testing.T) {
		for _, session := range []domain.Session{
			{TotalQuestions: 1},
			{StartedAt: started, TotalQuestions: -1},
			{StartedAt: started, SessionType: "exam"},
		} {
			_, err := s.CreateSession(ctx, session)
			assert.Equal(t, KindInvalid, KindOf(err), "session %+v", session)
		}
	})
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, domain.Session{StartedAt: testNow(), TotalQuestions: 5})
	require.NoError(t, err)

	require.NoError(t, s.EndSession(ctx, id, 3))
	got, err := s.GetSession(ctx, id)
	require.NoError(t, err)
	require.True(t, got.Ended())
	require.NotNil(t, got.CorrectAnswers)
	assert.Equal(t, 3, *got.CorrectAnswers)
	assert.WithinDuration(t, time.Now(), *got.EndedAt, time.Minute)

	t.Run("ending twice keeps the last score", func(t *testing.T) {
		require.NoError(t, s.EndSession(ctx, id, 4))
		got, err := s.GetSession(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got.CorrectAnswers)
		assert.Equal(t, 4, *got.CorrectAnswers)
	})

	t.Run("missing session is not found", func(t *testing.T) {
		err := s.EndSession(ctx, id+1, 1)
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))

		_, err = s.GetSession(ctx, id+1)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("negative score is rejected", func(t *testing.T) {
		assert.Equal(t, KindInvalid, KindOf(s.EndSession(ctx, id, -1)))
	})
}

func TestRecordAttempt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	attemptedAt := testNow().Add(-time.Minute)
	id, err := s.RecordAttempt(ctx, domain.Attempt{
		SessionID:   41,
		CardID:      42,
		UserAnswer:  "Paris",
		IsCorrect:   true,
		AttemptedAt: attemptedAt,
	})
	require.NoError(t, err, "dangling references are accepted")
	assert.Positive(t, id)

	attempts, err := s.ListAttemptsByCard(ctx, 42)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	got := attempts[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, int64(41), got.SessionID)
	assert.Equal(t, "Paris", got.UserAnswer)
	assert.True(t, got.IsCorrect)
	assert.Equal(t, 0, got.TimeTaken)
	assert.True(t, attemptedAt.Equal(got.AttemptedAt))

	t.Run("invalid attempts are rejected", func(t *testing.T) {
		for _, attempt := range []domain.Attempt{
			{CardID: 1},
			{SessionID: 1},
			{SessionID: 1, CardID: 1, TimeTaken: -5},
		} {
			_, err := s.RecordAttempt(ctx, attempt)
			assert.Equal(t, KindInvalid, KindOf(err), "attempt %+v", attempt)
		}
	})
}

func TestListSessionsAndAttempts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	attempts, err := s.ListAttempts(ctx)
	require.NoError(t, err)
	assert.Empty(t, attempts)

	now := testNow()
	later, err := s.CreateSession(ctx, domain.Session{StartedAt: now, TotalQuestions: 1})
	require.NoError(t, err)
	earlier, err := s.CreateSession(ctx, domain.Session{StartedAt: now.Add(-time.Hour), TotalQuestions: 2, SessionType: domain.Test})
	require.NoError(t, err)
	require.NoError(t, s.EndSession(ctx, earlier, 2))

	second, err := s.RecordAttempt(ctx, domain.Attempt{SessionID: later, CardID: 7, UserAnswer: "B", AttemptedAt: now})
	require.NoError(t, err)
	first, err := s.RecordAttempt(ctx, domain.Attempt{SessionID: earlier, CardID: 8, UserAnswer: "A", IsCorrect: true, TimeTaken: 4, AttemptedAt: now.Add(-time.Hour)})
	require.NoError(t, err)

	sessions, err = s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, earlier, sessions[0].ID, "oldest session first")
	assert.True(t, sessions[0].Ended())
	assert.Equal(t, domain.Test, sessions[0].SessionType)
	assert.Equal(t, later, sessions[1].ID)
	assert.False(t, sessions[1].Ended())

	attempts, err = s.ListAttempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, first, attempts[0].ID, "oldest attempt first")
	assert.Equal(t, 4, attempts[0].TimeTaken)
	assert.Equal(t, second, attempts[1].ID)
}
