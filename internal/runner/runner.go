/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package runner drives a playlist create run: backup, compile every
// configuration file, then commit or roll back.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/friendsincode/smartlists/internal/apperr"
	"github.com/friendsincode/smartlists/internal/compiler"
	"github.com/friendsincode/smartlists/internal/config"
	"github.com/friendsincode/smartlists/internal/models"
	"github.com/friendsincode/smartlists/internal/playlistconfig"
	"github.com/friendsincode/smartlists/internal/telemetry"
	"github.com/rs/zerolog"
)

// BackupLabel names the backup taken before a run.
const BackupLabel = "before_playlist_creation"

// ErrBackupFailed is wrapped when the pre-run backup fails. No library
// change is attempted after it.
var ErrBackupFailed = errors.New("backup failed")

// Session is a library unit of work.
type Session interface {
	compiler.Store
	RootPlaylist(ctx context.Context, name string) (*models.Playlist, error)
	Checkpoint(ctx context.Context) error
	Commit() error
	Rollback() error
}

// BackupGuard snapshots the library before a run.
type BackupGuard interface {
	Create(ctx context.Context, label string) (string, error)
}

// Options configures a Runner.
type Options struct {
	RootPlaylist string
	// DataDir is the root folder links are resolved against.
	DataDir    string
	CommitMode config.CommitMode
	MaxDepth   int
	DryRun     bool
}

// Runner executes create runs.
type Runner struct {
	begin  func(ctx context.Context) (Session, error)
	backup BackupGuard
	opts   Options
	logger zerolog.Logger
}

// New creates a runner. begin opens library sessions; backup may be nil
// when backups are disabled.
func New(begin func(ctx context.Context) (Session, error), backup BackupGuard, opts Options, logger zerolog.Logger) *Runner {
	if opts.CommitMode == "" {
		opts.CommitMode = config.CommitPerRun
	}
	return &Runner{
		begin:  begin,
		backup: backup,
		opts:   opts,
		logger: logger.With().Str("component", "runner").Logger(),
	}
}

// Request selects the files of one run.
type Request struct {
	Files      []string
	SkipBackup bool
}

// Run compiles req.Files in order. Per-item failures are reported in the
// returned report; an error means the run stopped early, and the report
// holds what was processed up to that point.
func (r *Runner) Run(ctx context.Context, req Request) (*compiler.Report, error) {
	start := time.Now()
	defer func() {
		telemetry.RunDuration.Observe(time.Since(start).Seconds())
	}()

	if len(req.Files) == 0 {
		return nil, fmt.Errorf("no playlist configuration files to process")
	}

	if err := r.runBackup(ctx, req); err != nil {
		return nil, err
	}

	session, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Rollback(); err != nil {
			r.logger.Warn().Err(err).Msg("rollback failed")
		}
	}()

	root, err := session.RootPlaylist(ctx, r.opts.RootPlaylist)
	if err != nil {
		return nil, err
	}

	compileOpts := compiler.Options{MaxDepth: r.opts.MaxDepth}
	if r.opts.CommitMode == config.CommitPerCategory && !r.opts.DryRun {
		compileOpts.Checkpoint = session.Checkpoint
	}
	c := compiler.New(session, playlistconfig.Dir{Root: r.opts.DataDir}, compileOpts, r.logger)

	report := &compiler.Report{}
	for _, file := range req.Files {
		source := playlistconfig.Key(file)
		doc, err := playlistconfig.Load(source)
		if err != nil {
			r.logger.Error().Err(err).Str("file", source).Msg("failed to load playlist config")
			report.Add(compiler.Result{
				Status: compiler.StatusFailed,
				Name:   filepath.Base(source),
				Path:   filepath.Base(source),
				Source: source,
				Err:    apperr.Wrap(apperr.ErrorTypeLink, err, "load %s", source),
			})
			continue
		}
		if problems := playlistconfig.Validate(doc); len(problems) > 0 {
			r.logger.Warn().Str("file", source).Int("problems", len(problems)).Msg("playlist config has problems; invalid items will fail")
		}

		r.logger.Info().Str("file", source).Int("playlists", doc.PlaylistCount()).Msg("processing playlist config")
		if err := c.CompileDocument(ctx, report, doc, source, root); err != nil {
			return report, fmt.Errorf("compile %s: %w", source, err)
		}
	}

	created, skipped, failed := report.Counts()
	if r.opts.DryRun {
		r.logger.Info().Int("created", created).Int("skipped", skipped).Int("failed", failed).Msg("dry run complete, discarding changes")
		return report, nil
	}
	if err := session.Commit(); err != nil {
		return report, err
	}
	r.logger.Info().Int("created", created).Int("skipped", skipped).Int("failed", failed).Msg("run committed")
	return report, nil
}

func (r *Runner) runBackup(ctx context.Context, req Request) error {
	switch {
	case r.backup == nil:
		r.logger.Debug().Msg("backups disabled")
		return nil
	case r.opts.DryRun:
		r.logger.Info().Msg("dry run, skipping backup")
		return nil
	case req.SkipBackup:
		r.logger.Warn().Msg("skipping backup on request")
		return nil
	}

	path, err := r.backup.Create(ctx, BackupLabel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}
	r.logger.Info().Str("path", path).Msg("backup created")
	return nil
}
