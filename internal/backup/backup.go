// Package backup exports the card collection, its history and its analytics
// as a single JSON document, and restores such a document into a store.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/storage"
)

// Version is bumped whenever the document layout changes.
// Version 1 documents carry no sessions or attempts.
const Version = 2

// ErrUnsupported is returned by Restore for documents it cannot read.
var ErrUnsupported = errors.New("unsupported export document")

// Source is the read side of the store an export needs.
type Source interface {
	ListCards(ctx context.Context) ([]domain.Card, error)
	ListSessions(ctx context.Context) ([]domain.Session, error)
	ListAttempts(ctx context.Context) ([]domain.Attempt, error)
	SubjectStats(ctx context.Context) ([]domain.SubjectStat, error)
	DailyStats(ctx context.Context, days int) ([]domain.DailyStat, error)
}

// Restorer is the write side of the store a restore needs.
type Restorer interface {
	Restore(ctx context.Context, snap storage.Snapshot) (storage.RestoreResult, error)
}

type Document struct {
	ID           string               `json:"id"`
	Version      int                  `json:"version"`
	ExportedAt   time.Time            `json:"exported_at"`
	Days         int                  `json:"days"`
	Cards        []domain.Card        `json:"cards"`
	Sessions     []domain.Session     `json:"sessions"`
	Attempts     []domain.Attempt     `json:"attempts"`
	SubjectStats []domain.SubjectStat `json:"subject_stats"`
	DailyStats   []domain.DailyStat   `json:"daily_stats"`
}

// Build gathers the document. Daily stats cover the last days days.
func Build(ctx context.Context, src Source, days int) (Document, error) {
	cards, err := src.ListCards(ctx)
	if err != nil {
		return Document{}, err
	}
	sessions, err := src.ListSessions(ctx)
	if err != nil {
		return Document{}, err
	}
	attempts, err := src.ListAttempts(ctx)
	if err != nil {
		return Document{}, err
	}
	subjects, err := src.SubjectStats(ctx)
	if err != nil {
		return Document{}, err
	}
	daily, err := src.DailyStats(ctx, days)
	if err != nil {
		return Document{}, err
	}

	return Document{
		ID:           uuid.NewString(),
		Version:      Version,
		ExportedAt:   time.Now().UTC(),
		Days:         days,
		Cards:        nonNil(cards),
		Sessions:     nonNil(sessions),
		Attempts:     nonNil(attempts),
		SubjectStats: nonNil(subjects),
		DailyStats:   nonNil(daily),
	}, nil
}

// Write builds the document and encodes it to w as indented JSON.
func Write(ctx context.Context, w io.Writer, src Source, days int, log *zap.Logger) (Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	doc, err := Build(ctx, src, days)
	if err != nil {
		return Document{}, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return Document{}, fmt.Errorf("failed to encode export: %w", err)
	}

	log.Info("export written",
		zap.String("export_id", doc.ID),
		zap.Int("cards", len(doc.Cards)),
		zap.Int("sessions", len(doc.Sessions)),
		zap.Int("attempts", len(doc.Attempts)),
		zap.Int("subjects", len(doc.SubjectStats)),
		zap.Int("days", len(doc.DailyStats)),
	)
	return doc, nil
}

// Restore reads a document from r and merges its cards, sessions and
// attempts into dst. Stats in the document are ignored; they follow from
// the restored rows.
func Restore(ctx context.Context, r io.Reader, dst Restorer, log *zap.Logger) (storage.RestoreResult, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return storage.RestoreResult{}, fmt.Errorf("failed to decode export: %w", err)
	}
	// A missing cards field decodes to nil, an empty one to [].
	if doc.Cards == nil {
		return storage.RestoreResult{}, fmt.Errorf("%w: no cards field", ErrUnsupported)
	}
	if doc.Version < 1 || doc.Version > Version {
		return storage.RestoreResult{}, fmt.Errorf("%w: version %d", ErrUnsupported, doc.Version)
	}

	result, err := dst.Restore(ctx, storage.Snapshot{
		Cards:    doc.Cards,
		Sessions: doc.Sessions,
		Attempts: doc.Attempts,
	})
	if err != nil {
		return storage.RestoreResult{}, err
	}

	log.Info("export restored",
		zap.String("export_id", doc.ID),
		zap.Int("version", doc.Version),
		zap.Int("cards_added", result.CardsAdded),
		zap.Int("cards_skipped", result.CardsSkipped),
		zap.Int("attempts_added", result.AttemptsAdded),
	)
	return result, nil
}

// nonNil keeps empty collections as [] rather than null in the document.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
