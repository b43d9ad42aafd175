/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// RootParentID is the parent of top-level playlist nodes.
const RootParentID int64 = 0

// PlaylistAttribute enumerates playlist node kinds as the DJ library stores them.
type PlaylistAttribute int

const (
	AttributePlaylist PlaylistAttribute = 0
	AttributeFolder   PlaylistAttribute = 1
	AttributeSmart    PlaylistAttribute = 4
)

// String returns a human-readable kind.
func (a PlaylistAttribute) String() string {
	switch a {
	case AttributeFolder:
		return "folder"
	case AttributeSmart:
		return "smart"
	case AttributePlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// Playlist is a node of the library's playlist tree. Names are unique per
// parent only by convention; nothing in the schema enforces it.
type Playlist struct {
	ID        int64             `gorm:"primaryKey;autoIncrement"`
	ParentID  int64             `gorm:"index:idx_playlists_parent_name,priority:1;not null;default:0"`
	Name      string            `gorm:"index:idx_playlists_parent_name,priority:2;type:varchar(255);not null"`
	Seq       int               `gorm:"not null;default:0"`
	Attribute PlaylistAttribute `gorm:"not null;default:0"`
	SmartList string            `gorm:"type:text"`
	UUID      string            `gorm:"type:varchar(36);uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFolder reports whether the node can hold children.
func (p Playlist) IsFolder() bool { return p.Attribute == AttributeFolder }

// IsSmart reports whether the node is a smart playlist.
func (p Playlist) IsSmart() bool { return p.Attribute == AttributeSmart }

// TagAttribute separates tag categories from assignable tags.
type TagAttribute int

const (
	TagAttributeTag      TagAttribute = 0
	TagAttributeCategory TagAttribute = 1
)

// Tag is a user-defined track label ("My Tag"). Category rows group tags
// and are never matched by name resolution.
type Tag struct {
	ID        int64        `gorm:"primaryKey;autoIncrement:false"`
	ParentID  int64        `gorm:"index;not null;default:0"`
	Name      string       `gorm:"index;type:varchar(255);not null"`
	Seq       int          `gorm:"not null;default:0"`
	Attribute TagAttribute `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
