package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/conorfennell/testdeck/internal/api"
	"github.com/conorfennell/testdeck/internal/backup"
	"github.com/conorfennell/testdeck/internal/config"
	"github.com/conorfennell/testdeck/internal/fsrs"
	"github.com/conorfennell/testdeck/internal/importer"
	"github.com/conorfennell/testdeck/internal/storage"
)

func main() {
	cfg, args, err := config.Load(os.Args[1:])
	if config.IsHelp(err) {
		config.Usage()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	log, err := setupLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args, log); err != nil {
		log.Error("command failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		config.Usage()
		return errors.New("missing command")
	}

	store, err := storage.Open(ctx, cfg.DB, log,
		storage.WithBusyTimeout(cfg.BusyTimeout),
		storage.WithScheduler(scheduler(cfg.Scheduler)),
	)
	if err != nil {
		return err
	}
	log.Debug("database ready", zap.String("path", store.Path()))

	switch args[0] {
	case "invoke":
		return invoke(ctx, api.NewHandler(store, cfg.Days, log), args[1:])

	case "import":
		if len(args) != 2 {
			return errors.New("usage: testdeck import <path|git-url>")
		}
		report, err := importer.New(store, cfg.Repos, log).Import(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, report)

	case "export":
		path := "-"
		if len(args) > 1 {
			path = args[1]
		}
		return writeTo(path, func(w io.Writer) error {
			_, err := backup.Write(ctx, w, store, cfg.ExportDays, log)
			return err
		})

	case "restore":
		if len(args) != 2 {
			return errors.New("usage: testdeck restore <file|->")
		}
		var result storage.RestoreResult
		err := readFrom(args[1], func(r io.Reader) error {
			var err error
			result, err = backup.Restore(ctx, r, store, log)
			return err
		})
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, result)

	case "integrity":
		report, err := store.CheckIntegrity(ctx)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, report)

	case "cleanup":
		removed, err := store.CleanupOrphans(ctx)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, map[string]int64{"attempts_removed": removed})

	case "due":
		due, err := store.DueCards(ctx, time.Now())
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, due)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func scheduler(name string) fsrs.Scheduler {
	if name == "fsrs" {
		return fsrs.DefaultParams()
	}
	return fsrs.DefaultSM2()
}

// writeTo hands write the file at path, or stdout for "-". The file's Close
// error is returned when write itself succeeded.
func writeTo(path string, write func(io.Writer) error) (err error) {
	if path == "-" {
		return write(os.Stdout)
	}

	f, createErr := os.Create(path)
	if createErr != nil {
		return fmt.Errorf("failed to create %s: %w", path, createErr)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	return write(f)
}

// readFrom hands read the file at path, or stdin for "-".
func readFrom(path string, read func(io.Reader) error) error {
	if path == "-" {
		return read(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

// invoke runs one named operation. The payload comes from the next argument,
// or from stdin when that argument is "-".
func invoke(ctx context.Context, h *api.Handler, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: testdeck invoke <operation> [json|-]")
	}

	var payload json.RawMessage
	if len(args) == 2 {
		if args[1] == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}
			payload = data
		} else {
			payload = json.RawMessage(args[1])
		}
	}

	resp := h.Invoke(ctx, args[0], payload)
	if err := printJSON(os.Stdout, resp); err != nil {
		return err
	}
	if !resp.OK {
		return errors.New(resp.Error)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
