// Package app assembles the task services from configuration.
package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/colonyops/tasks/internal/core/config"
	"github.com/colonyops/tasks/internal/data/db"
	"github.com/colonyops/tasks/internal/data/remote"
	"github.com/colonyops/tasks/internal/data/repository"
	"github.com/colonyops/tasks/internal/data/stores"
)

// App is the central entry point for task operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config     *config.Config
	DB         *db.DB
	Fs         afero.Fs
	Local      *stores.TaskStore
	Remote     *remote.FileStore
	Repository *repository.Repository

	log zerolog.Logger
}

// Open builds an App on the operating system filesystem.
func Open(cfg *config.Config, log zerolog.Logger) (*App, error) {
	return OpenFs(cfg, afero.NewOsFs(), log)
}

// OpenFs builds an App whose remote document lives on fs. The local
// database always lives in cfg.DataDir. A corrupted database is moved
// aside and recreated.
func OpenFs(cfg *config.Config, fs afero.Fs, log zerolog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbOpts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, dbOpts)
	if err != nil && stores.IsCorruptionError(err) {
		log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database corrupted, recreating")
		if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
			return nil, fmt.Errorf("recover database: %w", rerr)
		}
		database, err = db.Open(cfg.DataDir, dbOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	local := stores.NewTaskStore(database)
	rem := remote.NewFileStore(fs, cfg.Remote.Path, remote.WithLatency(cfg.Remote.Latency))
	repo := repository.New(local, rem, repository.Options{
		ServeStale: cfg.Cache.ServeStale,
	}, log)

	return &App{
		Config:     cfg,
		DB:         database,
		Fs:         fs,
		Local:      local,
		Remote:     rem,
		Repository: repo,
		log:        log,
	}, nil
}

// Watch starts watching the remote document for edits made by other
// processes. The caller closes the returned watcher.
func (a *App) Watch() (*remote.Watcher, error) {
	return remote.NewWatcher(a.Remote, a.Fs, a.log)
}

// Close waits for queued repository work and closes the database.
func (a *App) Close() error {
	var errs []error
	if err := a.Repository.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close repository: %w", err))
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
