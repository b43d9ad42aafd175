/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/friendsincode/smartlists/internal/apperr"
	"github.com/friendsincode/smartlists/internal/models"
	"github.com/friendsincode/smartlists/internal/smartlist"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Session is one unit of work against the library. It is not safe for
// concurrent use.
type Session struct {
	lib    *Library
	tx     *gorm.DB
	logger zerolog.Logger
}

func (s *Session) conn(ctx context.Context) (*gorm.DB, error) {
	if s.tx == nil {
		return nil, ErrSessionClosed
	}
	return s.tx.WithContext(ctx), nil
}

// FindPlaylist returns the node named exactly name directly under parentID,
// or nil when there is none.
func (s *Session) FindPlaylist(ctx context.Context, name string, parentID int64) (*models.Playlist, error) {
	tx, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []models.Playlist
	if err := tx.Where("parent_id = ? AND name = ?", parentID, name).Order("seq").Order("id").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("find playlist %q under %d: %w", name, parentID, err)
	}
	// Some collations compare case-insensitively; names must match exactly.
	for i := range candidates {
		if candidates[i].Name == name {
			s.logger.Debug().Str("name", name).Int64("parent_id", parentID).Int64("id", candidates[i].ID).Msg("playlist found")
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// RootPlaylist returns the top-level node named name.
func (s *Session) RootPlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	p, err := s.FindPlaylist(ctx, name, models.RootParentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Wrap(apperr.ErrorTypeNotFound, ErrRootNotFound, "root playlist %q", name)
	}
	return p, nil
}

// ResolveTag returns the id of the tag named exactly name. Tag categories
// never match.
func (s *Session) ResolveTag(ctx context.Context, name string) (int64, error) {
	tx, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	var candidates []models.Tag
	if err := tx.Where("name = ? AND attribute = ?", name, models.TagAttributeTag).Order("id").Find(&candidates).Error; err != nil {
		return 0, fmt.Errorf("resolve tag %q: %w", name, err)
	}
	for _, tag := range candidates {
		if tag.Name == name {
			return tag.ID, nil
		}
	}
	return 0, apperr.Wrap(apperr.ErrorTypeNotFound, ErrTagNotFound, "tag %q", name)
}

// CreateFolder appends a folder named name under parentID.
func (s *Session) CreateFolder(ctx context.Context, name string, parentID int64) (*models.Playlist, error) {
	folder, err := s.insert(ctx, name, parentID, models.AttributeFolder)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("name", name).Int64("parent_id", parentID).Int64("id", folder.ID).Msg("created folder")
	return folder, nil
}

// CreateSmartPlaylist appends a smart playlist named name under parentID
// holding def.
func (s *Session) CreateSmartPlaylist(ctx context.Context, name string, def smartlist.Definition, parentID int64) (*models.Playlist, error) {
	// Validate the payload before touching the database.
	if _, err := smartlist.Marshal(0, def); err != nil {
		return nil, apperr.Wrap(apperr.ErrorTypeCreation, err, "create smart playlist %q", name)
	}

	playlist, err := s.insert(ctx, name, parentID, models.AttributeSmart)
	if err != nil {
		return nil, err
	}

	payload, err := smartlist.Marshal(playlist.ID, def)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrorTypeCreation, err, "create smart playlist %q", name)
	}

	tx, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if err := tx.Model(playlist).Update("smart_list", payload).Error; err != nil {
		return nil, creationError(err, "store smart list for %q", name)
	}
	playlist.SmartList = payload

	s.logger.Info().
		Str("name", name).
		Int64("parent_id", parentID).
		Int64("id", playlist.ID).
		Int("conditions", len(def.Conditions)).
		Msg("created smart playlist")
	return playlist, nil
}

func (s *Session) insert(ctx context.Context, name string, parentID int64, attr models.PlaylistAttribute) (*models.Playlist, error) {
	tx, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	if parentID != models.RootParentID {
		var parent models.Playlist
		if err := tx.First(&parent, parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.New(apperr.ErrorTypeCreation, "create %s %q: parent %d does not exist", attr, name, parentID)
			}
			return nil, creationError(err, "create %s %q: load parent %d", attr, name, parentID)
		}
		if !parent.IsFolder() {
			return nil, apperr.New(apperr.ErrorTypeCreation, "create %s %q: parent %q is not a folder", attr, name, parent.Name)
		}
	}

	var maxSeq int
	if err := tx.Model(&models.Playlist{}).
		Where("parent_id = ?", parentID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return nil, creationError(err, "create %s %q: next position", attr, name)
	}

	playlist := &models.Playlist{
		ParentID:  parentID,
		Name:      name,
		Seq:       maxSeq + 1,
		Attribute: attr,
		UUID:      uuid.NewString(),
	}
	if err := tx.Create(playlist).Error; err != nil {
		return nil, creationError(err, "create %s %q", attr, name)
	}
	return playlist, nil
}

// Commit makes the session's writes durable and closes it.
func (s *Session) Commit() error {
	if s.tx == nil {
		return ErrSessionClosed
	}
	err := s.tx.Commit().Error
	s.tx = nil
	if err != nil {
		return fmt.Errorf("commit library session: %w", err)
	}
	return nil
}

// Rollback discards the session's writes and closes it. Rolling back a
// closed session is a no-op.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback().Error
	s.tx = nil
	if err != nil {
		return fmt.Errorf("rollback library session: %w", err)
	}
	return nil
}

// Checkpoint commits the writes so far and continues in a new transaction.
func (s *Session) Checkpoint(ctx context.Context) error {
	if err := s.Commit(); err != nil {
		return err
	}
	tx := s.lib.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin library session: %w", tx.Error)
	}
	s.tx = tx
	s.logger.Debug().Msg("checkpoint committed")
	return nil
}
