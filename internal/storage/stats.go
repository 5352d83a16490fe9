package storage

import (
	"context"
	"fmt"

	"github.com/conorfennell/testdeck/internal/domain"
)

// Both aggregations LEFT JOIN from the entity table to attempts so that
// cards and sessions with no attempts still get a row. The rows the join
// pads with NULLs are left out of the accuracy average, and an empty
// average is reported as 0.

const subjectStatsQuery = `
	SELECT c.subject AS subject,
		COUNT(DISTINCT c.id) AS total_cards,
		COUNT(a.id) AS total_attempts,
		COALESCE(SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END), 0) AS correct_attempts,
		COALESCE(ROUND(AVG(CASE
			WHEN a.id IS NULL THEN NULL
			WHEN a.is_correct = 1 THEN 100.0
			ELSE 0.0
		END), 2), 0.0) AS accuracy
	FROM cards c
	LEFT JOIN attempts a ON c.id = a.card_id
	GROUP BY c.subject
	ORDER BY c.subject
`

const dailyStatsQuery = `
	SELECT DATE(s.started_at) AS date,
		COUNT(DISTINCT s.id) AS sessions,
		COUNT(a.id) AS total_questions,
		COALESCE(SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END), 0) AS correct_answers,
		COALESCE(ROUND(AVG(CASE
			WHEN a.id IS NULL THEN NULL
			WHEN a.is_correct = 1 THEN 100.0
			ELSE 0.0
		END), 2), 0.0) AS accuracy
	FROM sessions s
	LEFT JOIN attempts a ON s.id = a.session_id
	WHERE DATE(s.started_at) >= DATE('now', '-' || ? || ' days')
	GROUP BY DATE(s.started_at)
	ORDER BY DATE(s.started_at) DESC
`

// SubjectStats reports card and attempt totals per subject, ordered by subject.
func (s *Store) SubjectStats(ctx context.Context) ([]domain.SubjectStat, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	stats := []domain.SubjectStat{}
	if err := db.SelectContext(ctx, &stats, subjectStatsQuery); err != nil {
		return nil, statementErr("get subject stats", err)
	}
	return stats, nil
}

// DailyStats reports session and attempt totals per calendar day for sessions
// started within the last days days (inclusive), most recent day first.
func (s *Store) DailyStats(ctx context.Context, days int) ([]domain.DailyStat, error) {
	if days < 1 {
		return nil, invalidErr("get daily stats", fmt.Errorf("days must be at least 1, got %d", days))
	}

	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	stats := []domain.DailyStat{}
	if err := db.SelectContext(ctx, &stats, dailyStatsQuery, days); err != nil {
		return nil, statementErr(fmt.Sprintf("get daily stats for %d days", days), err)
	}
	return stats, nil
}
