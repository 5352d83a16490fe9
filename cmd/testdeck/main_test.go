package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conorfennell/testdeck/internal/config"
	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/fsrs"
	"github.com/conorfennell/testdeck/internal/storage"
)

func TestWriteTo(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes the file", func(t *testing.T) {
		path := filepath.Join(dir, "out.json")
		err := writeTo(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "{}")
			return err
		})
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
	})

	t.Run("create failure", func(t *testing.T) {
		err := writeTo(filepath.Join(dir, "missing", "out.json"), func(io.Writer) error { return nil })
		require.Error(t, err)
	})

	t.Run("close failure is returned", func(t *testing.T) {
		err := writeTo(filepath.Join(dir, "closed.json"), func(w io.Writer) error {
			return w.(*os.File).Close()
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrClosed)
	})

	t.Run("write failure wins over close", func(t *testing.T) {
		boom := errors.New("encode failed")
		err := writeTo(filepath.Join(dir, "failed.json"), func(w io.Writer) error {
			_ = w.(*os.File).Close()
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DB:          filepath.Join(dir, "testdeck.db"),
		Env:         "development",
		Repos:       filepath.Join(dir, "repos"),
		Days:        30,
		ExportDays:  30,
		BusyTimeout: 5000,
		Scheduler:   "sm2",
	}
}

func TestRun_ExportRestore(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	src := testConfig(t)
	store, err := storage.Open(ctx, src.DB, log)
	require.NoError(t, err)
	cardID, err := store.CreateCard(ctx, domain.Card{Question: "2+2?", OptionA: "3", OptionB: "4", CorrectAnswer: "B", Subject: "Math"})
	require.NoError(t, err)
	_, err = store.RecordAttempt(ctx, domain.Attempt{SessionID: 1, CardID: cardID, UserAnswer: "B", IsCorrect: true})
	require.NoError(t, err)
	_, err = store.RecordAttempt(ctx, domain.Attempt{SessionID: 1, CardID: 999, UserAnswer: "x"})
	require.NoError(t, err)

	exported := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, run(ctx, src, []string{"export", exported}, log))

	dst := testConfig(t)
	require.NoError(t, run(ctx, dst, []string{"restore", exported}, log))

	restored, err := storage.Open(ctx, dst.DB, log)
	require.NoError(t, err)
	cards, err := restored.ListCards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	require.NoError(t, run(ctx, src, []string{"integrity"}, log))
	require.NoError(t, run(ctx, src, []string{"cleanup"}, log))
	report, err := store.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.MissingCard)

	require.NoError(t, run(ctx, src, []string{"due"}, log))

	assert.Error(t, run(ctx, dst, []string{"restore"}, log))
	assert.Error(t, run(ctx, dst, []string{"restore", filepath.Join(t.TempDir(), "missing.json")}, log))
	assert.Error(t, run(ctx, dst, []string{"rewind"}, log))
}

func TestScheduler(t *testing.T) {
	assert.Equal(t, fsrs.DefaultSM2(), scheduler("sm2"))
	assert.Equal(t, fsrs.DefaultParams(), scheduler("fsrs"))
}
