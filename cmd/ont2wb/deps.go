package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/osegermany/ont2wb/internal/application/handlers"
	"github.com/osegermany/ont2wb/internal/domain/ports"
	"github.com/osegermany/ont2wb/internal/domain/services"
	"github.com/osegermany/ont2wb/internal/infrastructure/config"
	"github.com/osegermany/ont2wb/internal/infrastructure/journal/sqlite"
	"github.com/osegermany/ont2wb/internal/infrastructure/logging"
	"github.com/osegermany/ont2wb/internal/infrastructure/metrics"
	"github.com/osegermany/ont2wb/internal/infrastructure/wikibase"
)

// errJournalDisabled is returned by commands that need the journal when none is configured.
var errJournalDisabled = errors.New("journal is disabled (set journal.path in the config or use --journal)")

// depsOverrides carries command line values that take precedence over the config file.
type depsOverrides struct {
	journalPath string
	metricsFile string
}

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config         *config.Config
	SyncHandler    *handlers.SyncHandler
	HistoryHandler *handlers.HistoryHandler // nil when the journal is disabled
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	client   *wikibase.Client
	journal  *sqlite.Repository
	recorder *metrics.Recorder
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, overrides depsOverrides, fn func(*Deps) error) error {
	return withInternalDeps(ctx, overrides, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(ctx context.Context, overrides depsOverrides, fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if overrides.journalPath != "" {
		cfg.Journal.Path = overrides.journalPath
	}
	if overrides.metricsFile != "" {
		cfg.Metrics.File = overrides.metricsFile
	}

	level := cfg.Log.Level
	if globalVerbose {
		level = "debug"
	}
	closeLog, err := logging.Init(os.Stderr, level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer closeLog()

	client, err := wikibase.NewClient(cfg.WikiBase.APIURL, cfg.WikiBase.Timeout)
	if err != nil {
		return fmt.Errorf("creating wikibase client: %w", err)
	}

	deps := &internalDeps{client: client}
	deps.Config = cfg

	// Interfaces stay nil unless the component is enabled.
	var journal ports.Journal
	if cfg.Journal.Path != "" {
		repo, err := sqlite.NewRepository(cfg.Journal)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer repo.Close()

		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring journal schema: %w", err)
		}
		slog.Debug("Journal enabled", "path", repo.Path())

		deps.journal = repo
		deps.HistoryHandler = handlers.NewHistoryHandler(repo)
		journal = repo
	}

	var recorder ports.Metrics
	if cfg.Metrics.File != "" {
		rec, err := metrics.NewRecorder()
		if err != nil {
			return fmt.Errorf("creating metrics recorder: %w", err)
		}
		deps.recorder = rec
		recorder = rec
	}

	syncService := services.NewSyncService(client, journal, recorder)
	deps.SyncHandler = handlers.NewSyncHandler(client, syncService)

	if err := fn(deps); err != nil {
		return err
	}

	if deps.recorder != nil {
		if err := deps.recorder.WriteFile(cfg.Metrics.File); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		slog.Debug("Wrote metrics", "file", cfg.Metrics.File)
	}

	return nil
}
