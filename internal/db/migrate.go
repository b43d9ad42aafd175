/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"errors"
	"fmt"

	"github.com/friendsincode/smartlists/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSchemaMissing is returned by CheckSchema when the library has not been
// migrated.
var ErrSchemaMissing = errors.New("library schema is missing or outdated; run `smartlists migrate`")

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.Playlist{},
		&models.Tag{},
	); err != nil {
		return err
	}

	if err := backfillPlaylistUUIDs(database); err != nil {
		return err
	}

	return nil
}

// backfillPlaylistUUIDs gives rows created by older tooling a UUID so the
// unique index holds for every row.
func backfillPlaylistUUIDs(database *gorm.DB) error {
	var ids []int64
	if err := database.Model(&models.Playlist{}).
		Where("uuid IS NULL OR uuid = ''").
		Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("find playlists without uuid: %w", err)
	}

	for _, id := range ids {
		if err := database.Model(&models.Playlist{}).
			Where("id = ?", id).
			Update("uuid", uuid.NewString()).Error; err != nil {
			return fmt.Errorf("backfill uuid for playlist %d: %w", id, err)
		}
	}
	return nil
}

// CheckSchema verifies the tables and columns the tool writes exist. It only
// reads; commands other than migrate never change the schema.
func CheckSchema(database *gorm.DB) error {
	m := database.Migrator()
	for _, model := range []any{&models.Playlist{}, &models.Tag{}} {
		if !m.HasTable(model) {
			return fmt.Errorf("%w: no table for %T", ErrSchemaMissing, model)
		}
	}
	for _, column := range []string{"ParentID", "Seq", "Attribute", "SmartList", "UUID"} {
		if !m.HasColumn(&models.Playlist{}, column) {
			return fmt.Errorf("%w: playlists has no %s column", ErrSchemaMissing, column)
		}
	}
	return nil
}
