package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// IntegrityReport counts attempts whose references match no stored row.
type IntegrityReport struct {
	Attempts       int  `json:"attempts" db:"attempts"`
	MissingCard    int  `json:"missing_card" db:"missing_card"`
	MissingSession int  `json:"missing_session" db:"missing_session"`
	Valid          bool `json:"valid" db:"-"`
}

// CheckIntegrity reports dangling attempt references. It changes nothing.
func (s *Store) CheckIntegrity(ctx context.Context) (IntegrityReport, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return IntegrityReport{}, err
	}
	defer db.Close()

	var report IntegrityReport
	err = db.GetContext(ctx, &report, `
		SELECT
			COUNT(*) AS attempts,
			COALESCE(SUM(CASE WHEN c.id IS NULL THEN 1 ELSE 0 END), 0) AS missing_card,
			COALESCE(SUM(CASE WHEN s.id IS NULL THEN 1 ELSE 0 END), 0) AS missing_session
		FROM attempts a
		LEFT JOIN cards c ON c.id = a.card_id
		LEFT JOIN sessions s ON s.id = a.session_id
	`)
	if err != nil {
		return IntegrityReport{}, statementErr("check integrity", err)
	}
	report.Valid = report.MissingCard == 0 && report.MissingSession == 0
	return report, nil
}

// CleanupOrphans deletes attempts whose card no longer exists and returns
// how many were removed. Attempts pointing at a missing session are kept,
// since their card still counts towards subject stats.
func (s *Store) CleanupOrphans(ctx context.Context) (int64, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var removed int64
	err = withTx(ctx, db, "clean up orphaned attempts", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM attempts WHERE card_id NOT IN (SELECT id FROM cards)`)
		if err != nil {
			return statementErr("delete orphaned attempts", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return statementErr("delete orphaned attempts", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("orphaned attempts removed", zap.Int64("attempts_removed", removed))
	return removed, nil
}
