/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package library reads and writes the DJ library's playlist tree and tags.
package library

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/friendsincode/smartlists/internal/apperr"
	"github.com/friendsincode/smartlists/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	// ErrTagNotFound is wrapped by ResolveTag when no tag has the name.
	ErrTagNotFound = errors.New("tag not found")
	// ErrRootNotFound is wrapped by RootPlaylist when the root is missing.
	ErrRootNotFound = errors.New("root playlist not found")
	// ErrSessionClosed is returned by a session used after commit or rollback.
	ErrSessionClosed = errors.New("library session closed")
)

// Library is the playlist and tag store.
type Library struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// New wraps an open database.
func New(db *gorm.DB, logger zerolog.Logger) *Library {
	return &Library{
		db:     db,
		logger: logger.With().Str("component", "library").Logger(),
	}
}

// Begin opens a session. All writes made through the session become visible
// on Commit and are discarded on Rollback.
func (l *Library) Begin(ctx context.Context) (*Session, error) {
	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin library session: %w", tx.Error)
	}
	return &Session{lib: l, tx: tx, logger: l.logger}, nil
}

// Playlists lists playlist nodes ordered by parent and position. filter is a
// case-insensitive substring match on the name.
func (l *Library) Playlists(ctx context.Context, filter string, smartOnly bool) ([]models.Playlist, error) {
	query := l.db.WithContext(ctx).Order("parent_id").Order("seq").Order("id")
	if smartOnly {
		query = query.Where("attribute = ?", models.AttributeSmart)
	}

	var playlists []models.Playlist
	if err := query.Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	if filter == "" {
		return playlists, nil
	}
	needle := strings.ToLower(filter)
	filtered := playlists[:0]
	for _, p := range playlists {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Tags lists tag categories and tags ordered by parent and position.
func (l *Library) Tags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := l.db.WithContext(ctx).Order("parent_id").Order("seq").Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Path returns the breadcrumb of names from the top level down to id.
func Path(byID map[int64]models.Playlist, id int64) string {
	var parts []string
	seen := map[int64]bool{}
	for id != models.RootParentID && !seen[id] {
		seen[id] = true
		p, ok := byID[id]
		if !ok {
			break
		}
		parts = append(parts, p.Name)
		id = p.ParentID
	}
	slices.Reverse(parts)
	return strings.Join(parts, " / ")
}

// creationError classifies err from a create. Connection loss and
// cancellation pass through unchanged so callers abort the run.
func creationError(err error, format string, args ...any) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return err
	}
	return apperr.Wrap(apperr.ErrorTypeCreation, err, format, args...)
}
