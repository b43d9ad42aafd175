/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package watch reports changes to playlist configuration files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultQuiet is how long a file must stay unchanged before it is reported.
const DefaultQuiet = 250 * time.Millisecond

// Watcher calls a handler with batches of changed *.json files in one
// directory.
type Watcher struct {
	dir    string
	quiet  time.Duration
	tick   time.Duration
	logger zerolog.Logger
}

// New creates a watcher on dir. A zero quiet uses DefaultQuiet.
func New(dir string, quiet time.Duration, logger zerolog.Logger) *Watcher {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	tick := quiet / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	return &Watcher{
		dir:    dir,
		quiet:  quiet,
		tick:   tick,
		logger: logger.With().Str("component", "watch").Logger(),
	}
}

// Run blocks until ctx is done, calling onChange with the sorted paths that
// changed once they have been quiet for the configured interval. Removed
// files are reported too so the handler can notice them.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info().Str("dir", w.dir).Msg("watching playlist configs")

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			pending[event.Name] = time.Now()

		case <-ticker.C:
			now := time.Now()
			var ready []string
			for path, last := range pending {
				if now.Sub(last) < w.quiet {
					continue
				}
				ready = append(ready, path)
				delete(pending, path)
			}
			if len(ready) == 0 {
				continue
			}
			sort.Strings(ready)
			w.logger.Debug().Strs("paths", ready).Msg("playlist configs changed")
			onChange(ready)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
