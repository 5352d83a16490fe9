package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/testdeck/internal/domain"
)

func recordAnswers(t *testing.T, s *Store, sessionID, cardID int64, correct ...bool) {
	t.Helper()
	for _, ok := range correct {
		_, err := s.RecordAttempt(context.Background(), domain.Attempt{
			SessionID:  sessionID,
			CardID:     cardID,
			UserAnswer: "x",
			IsCorrect:  ok,
			TimeTaken:  4,
		})
		require.NoError(t, err)
	}
}

func TestSubjectStats(t *testing.T) {
	ctx := context.Background()

	t.Run("concrete practice scenario", func(t *testing.T) {
		s := newTestStore(t)
		cardID, err := s.CreateCard(ctx, domain.Card{
			Question:      "2+2?",
			Subject:       "Math",
			QuestionType:  domain.MultipleChoice,
			CorrectAnswer: "4",
			Difficulty:    1,
		})
		require.NoError(t, err)
		sessionID, err := s.CreateSession(ctx, domain.Session{StartedAt: testNow(), TotalQuestions: 1, SessionType: domain.Practice})
		require.NoError(t, err)
		_, err = s.RecordAttempt(ctx, domain.Attempt{SessionID: sessionID, CardID: cardID, UserAnswer: "4", IsCorrect: true})
		require.NoError(t, err)
		require.NoError(t, s.EndSession(ctx, sessionID, 1))

		stats, err := s.SubjectStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.SubjectStat{
			{Subject: "Math", TotalCards: 1, TotalAttempts: 1, CorrectAttempts: 1, Accuracy: 100.0},
		}, stats)
	})

	t.Run("mixed results round to two decimals", func(t *testing.T) {
		s := newTestStore(t)
		cardID, err := s.CreateCard(ctx, domain.Card{Question: "Q", Subject: "History"})
		require.NoError(t, err)
		recordAnswers(t, s, 1, cardID, true, true, false)

		stats, err := s.SubjectStats(ctx)
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, 3, stats[0].TotalAttempts)
		assert.Equal(t, 2, stats[0].CorrectAttempts)
		assert.Equal(t, 66.67, stats[0].Accuracy)
	})

	t.Run("subjects without attempts report zeros", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.CreateCard(ctx, domain.Card{Question: "Q1", Subject: "Biology"})
		require.NoError(t, err)
		_, err = s.CreateCard(ctx, domain.Card{Question: "Q2", Subject: "Biology"})
		require.NoError(t, err)

		stats, err := s.SubjectStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.SubjectStat{
			{Subject: "Biology", TotalCards: 2, TotalAttempts: 0, CorrectAttempts: 0, Accuracy: 0},
		}, stats)
	})

	t.Run("unanswered cards do not dilute accuracy or inflate card counts", func(t *testing.T) {
		s := newTestStore(t)
		answered, err := s.CreateCard(ctx, domain.Card{Question: "Q1", Subject: "Chemistry"})
		require.NoError(t, err)
		_, err = s.CreateCard(ctx, domain.Card{Question: "Q2", Subject: "Chemistry"})
		require.NoError(t, err)
		recordAnswers(t, s, 1, answered, true, true, true)

		stats, err := s.SubjectStats(ctx)
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, 2, stats[0].TotalCards)
		assert.Equal(t, 3, stats[0].TotalAttempts)
		assert.Equal(t, 3, stats[0].CorrectAttempts)
		assert.Equal(t, 100.0, stats[0].Accuracy)
	})

	t.Run("ordered by subject", func(t *testing.T) {
		s := newTestStore(t)
		for _, subject := range []string{"Physics", "Art", "Math"} {
			_, err := s.CreateCard(ctx, domain.Card{Question: "Q", Subject: subject})
			require.NoError(t, err)
		}

		stats, err := s.SubjectStats(ctx)
		require.NoError(t, err)
		var subjects []string
		for _, st := range stats {
			subjects = append(subjects, st.Subject)
		}
		assert.Equal(t, []string{"Art", "Math", "Physics"}, subjects)
	})

	t.Run("empty store", func(t *testing.T) {
		stats, err := newTestStore(t).SubjectStats(ctx)
		require.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Empty(t, stats)
	})
}

func TestDailyStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	daysAgo := func(n int) time.Time {
		d := now.AddDate(0, 0, -n)
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
	}
	newSession := func(started time.Time) int64 {
		id, err := s.CreateSession(ctx, domain.Session{StartedAt: started, TotalQuestions: 3})
		require.NoError(t, err)
		return id
	}

	cardID, err := s.CreateCard(ctx, mathCard())
	require.NoError(t, err)

	today := newSession(daysAgo(0))
	recordAnswers(t, s, today, cardID, true, true, false)
	newSession(daysAgo(0)) // no attempts

	boundary := newSession(daysAgo(7))
	recordAnswers(t, s, boundary, cardID, false)

	newSession(daysAgo(3)) // a day with sessions but no attempts

	tooOld := newSession(daysAgo(8))
	recordAnswers(t, s, tooOld, cardID, true)

	stats, err := s.DailyStats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []domain.DailyStat{
		{Date: daysAgo(0).Format("2006-01-02"), Sessions: 2, TotalQuestions: 3, CorrectAnswers: 2, Accuracy: 66.67},
		{Date: daysAgo(3).Format("2006-01-02"), Sessions: 1, TotalQuestions: 0, CorrectAnswers: 0, Accuracy: 0},
		{Date: daysAgo(7).Format("2006-01-02"), Sessions: 1, TotalQuestions: 1, CorrectAnswers: 0, Accuracy: 0},
	}, stats)

	t.Run("wider window includes older days", func(t *testing.T) {
		stats, err := s.DailyStats(ctx, 8)
		require.NoError(t, err)
		require.Len(t, stats, 4)
		assert.Equal(t, daysAgo(8).Format("2006-01-02"), stats[3].Date)
		assert.Equal(t, 100.0, stats[3].Accuracy)
	})

	t.Run("window must be positive", func(t *testing.T) {
		_, err := s.DailyStats(ctx, 0)
		assert.Equal(t, KindInvalid, KindOf(err))
	})
}
