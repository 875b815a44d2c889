package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/kinfolk/internal/familyservice"
	"github.com/starford/kinfolk/internal/mcpserver"
	"github.com/starford/kinfolk/internal/seed"
	"github.com/starford/kinfolk/internal/store"
)

// openService opens the configured store and wraps it in a service with no
// event notifier.
func openService(cfg *Config) (*familyservice.Service, func() error, error) {
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	return familyservice.NewService(db, nil), db.Close, nil
}

// seedIfEmpty imports d only when the store has no persons, so records
// written through the API survive a restart.
func seedIfEmpty(ctx context.Context, d *seed.Dir, svc *familyservice.Service, logger *slog.Logger) error {
	empty, err := svc.Empty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		logger.Info("seed: store has data, initial import skipped", slog.String("root", d.Root()))
		return nil
	}
	return seed.Sync(ctx, d, svc, logger)
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they
// never mix with the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	svc, closeStore, err := openService(app.config)
	if err != nil {
		return err
	}
	defer closeStore()

	if path := app.config.Seed.Path; path != "" {
		dir, err := seed.NewDir(path)
		if err != nil {
			return fmt.Errorf("init seed dir: %w", err)
		}
		if err := seedIfEmpty(ctx, dir, svc, logger); err != nil {
			logger.Warn("initial seed import failed", slog.String("error", err.Error()))
		}
	}

	logger.Info("MCP server starting on stdio", slog.String("sqlite_path", app.config.SQLite.Path))
	return mcpserver.New(svc).ServeStdio()
}

// RunSeed replaces the store content with the tables found in dir.
func RunSeed(ctx context.Context, dir string, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	d, err := seed.NewDir(dir)
	if err != nil {
		return err
	}
	svc, closeStore, err := openService(app.config)
	if err != nil {
		return err
	}
	defer closeStore()

	return seed.Sync(ctx, d, svc, logger)
}

// RunExport writes the store content to dir in canonical form, creating
// the directory when needed.
func RunExport(ctx context.Context, dir string, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	d, err := seed.NewDir(dir)
	if err != nil {
		return err
	}
	svc, closeStore, err := openService(app.config)
	if err != nil {
		return err
	}
	defer closeStore()

	snap, err := svc.Export(ctx)
	if err != nil {
		return err
	}
	if err := seed.Save(d, snap); err != nil {
		return err
	}
	logger.Info("export written",
		slog.String("root", d.Root()),
		slog.Int("persons", len(snap.Persons)),
		slog.Int("relationships", len(snap.Relationships)))
	return nil
}
