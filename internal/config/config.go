package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/testdeck/internal/validator"
)

const envPrefix = "TESTDECK_"

type Config struct {
	DB          string `koanf:"db" validate:"required"`
	Env         string `koanf:"env" validate:"oneof=development production"`
	Repos       string `koanf:"repos" validate:"required"`
	Days        int    `koanf:"days" validate:"min=1"`
	ExportDays  int    `koanf:"export-days" validate:"min=1"`
	BusyTimeout int    `koanf:"busy-timeout" validate:"min=0"`
	Scheduler   string `koanf:"scheduler" validate:"oneof=sm2 fsrs"`
}

// Load parses args and layers configuration from, lowest to highest:
// flag defaults, the YAML file named by --config, TESTDECK_* environment
// variables and flags set on the command line. It returns the positional
// arguments left after flag parsing.
func Load(args []string) (*Config, []string, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Unchanged flags only fill keys that no other source set.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, nil, err
	}

	return &cfg, fs.Args(), nil
}

// Usage prints flag help to stderr.
func Usage() {
	fs := newFlagSet()
	fmt.Fprintln(os.Stderr, "Usage: testdeck [flags] <invoke|import|export|restore|integrity|cleanup|due> [args]")
	fs.PrintDefaults()
}

// IsHelp reports whether err came from -h or --help.
func IsHelp(err error) bool {
	return errors.Is(err, pflag.ErrHelp)
}

func newFlagSet() *pflag.FlagSet {
	dir := defaultDir()

	fs := pflag.NewFlagSet("testdeck", pflag.ContinueOnError)
	fs.Usage = func() {}
	fs.String("config", "", "path to a YAML config file")
	fs.String("db", filepath.Join(dir, "testdeck.db"), "path to the SQLite database file")
	fs.String("env", "production", "environment: development or production")
	fs.String("repos", filepath.Join(dir, "repos"), "directory for git deck checkouts")
	fs.Int("days", 30, "default window in days for daily stats")
	fs.Int("export-days", 365, "window in days for daily stats in exports")
	fs.Int("busy-timeout", 5000, "SQLite busy timeout in milliseconds")
	fs.String("scheduler", "sm2", "review scheduler for due cards: sm2 or fsrs")
	return fs
}

// envKey maps TESTDECK_EXPORT_DAYS to export-days.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
}

func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "testdeck")
}
