// Package importer loads deck files into the card store. Sources are a single
// deck file, a directory walked recursively, or a git repository that is
// cloned or pulled first.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/gitsource"
	"github.com/conorfennell/testdeck/internal/knol"
	"github.com/conorfennell/testdeck/internal/parser"
	"github.com/conorfennell/testdeck/internal/validator"
)

//go:generate mockgen -source=importer.go -destination=mock/store_mock.go

// Store is the part of the card store an import needs.
type Store interface {
	ListCards(ctx context.Context) ([]domain.Card, error)
	CreateCards(ctx context.Context, cards []domain.Card) ([]int64, error)
}

// Report summarises one import run.
type Report struct {
	BatchID  string   `json:"batch_id"`
	Source   string   `json:"source"`
	Files    int      `json:"files"`
	Parsed   int      `json:"parsed"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Invalid  int      `json:"invalid"`
	Errors   []string `json:"errors,omitempty"`
}

type Importer struct {
	store    Store
	reposDir string
	log      *zap.Logger
}

// New returns an Importer that clones git sources under reposDir.
// A nil log discards output.
func New(store Store, reposDir string, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: store, reposDir: reposDir, log: log}
}

// Import reads source as a git URL when it looks like one and as a local
// path otherwise.
func (im *Importer) Import(ctx context.Context, source string) (Report, error) {
	if gitsource.IsRemote(source) {
		return im.ImportGit(ctx, source)
	}
	return im.ImportPath(ctx, source)
}

// ImportGit syncs the repository into the repos directory and imports its checkout.
func (im *Importer) ImportGit(ctx context.Context, repoURL string) (Report, error) {
	localPath, err := gitsource.LocalPath(im.reposDir, repoURL)
	if err != nil {
		return Report{}, err
	}
	if err := gitsource.Sync(ctx, repoURL, localPath, im.log); err != nil {
		return Report{}, err
	}

	report, err := im.ImportPath(ctx, localPath)
	report.Source = repoURL
	return report, err
}

// ImportPath imports a deck file or every deck file below a directory.
// Parse failures and invalid cards are collected in the report; only store
// failures abort the run.
func (im *Importer) ImportPath(ctx context.Context, path string) (Report, error) {
	report := Report{BatchID: uuid.NewString(), Source: path}
	log := im.log.With(zap.String("batch_id", report.BatchID), zap.String("source", path))

	info, err := os.Stat(path)
	if err != nil {
		return report, fmt.Errorf("failed to read import source: %w", err)
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && d.Name() == ".git" {
				return fs.SkipDir
			}
			if !d.IsDir() && parser.Supported(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("error walking directory %s: %w", path, err)
		}
	} else {
		if !parser.Supported(path) {
			return report, fmt.Errorf("%s: %w", path, parser.ErrUnsupported)
		}
		files = []string{path}
	}

	var parsed []domain.Card
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Files++

		cards, err := parser.ParseFile(file)
		if err != nil {
			log.Warn("failed to parse deck file", zap.String("file", file), zap.Error(err))
			report.Errors = append(report.Errors, fmt.Sprintf("parsing %s: %v", file, err))
			continue
		}
		log.Debug("parsed deck file", zap.String("file", file), zap.Int("cards", len(cards)))
		parsed = append(parsed, cards...)
	}
	report.Parsed = len(parsed)

	existing, err := im.store.ListCards(ctx)
	if err != nil {
		return report, err
	}
	seen := make(map[string]bool, len(existing)+len(parsed))
	for _, card := range existing {
		seen[knol.Fingerprint(card)] = true
	}

	var fresh []domain.Card
	for _, card := range parsed {
		card = card.WithDefaults()
		if err := validator.ValidateStruct(card); err != nil {
			report.Invalid++
			report.Errors = append(report.Errors, fmt.Sprintf("card %q: %v", card.Question, err))
			continue
		}

		fingerprint := knol.Fingerprint(card)
		if seen[fingerprint] {
			report.Skipped++
			continue
		}
		seen[fingerprint] = true
		fresh = append(fresh, card)
	}

	if len(fresh) > 0 {
		ids, err := im.store.CreateCards(ctx, fresh)
		if err != nil {
			return report, err
		}
		report.Imported = len(ids)
	}

	log.Info("import complete",
		zap.Int("files", report.Files),
		zap.Int("parsed", report.Parsed),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
		zap.Int("invalid", report.Invalid),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}
