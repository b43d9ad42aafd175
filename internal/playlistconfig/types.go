/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package playlistconfig reads and validates the JSON files that declare
// smart playlist categories.
package playlistconfig

import (
	"encoding/json"
	"fmt"

	"github.com/friendsincode/smartlists/internal/smartlist"
)

// Operator is the logical operator as written in configuration files.
type Operator int

const (
	OperatorAll Operator = 1
	OperatorAny Operator = 2
)

// Logical converts o to the smart-list operator. Anything other than ANY
// is treated as ALL.
func (o Operator) Logical() smartlist.LogicalOperator {
	if o == OperatorAny {
		return smartlist.LogicalAny
	}
	return smartlist.LogicalAll
}

// PlaylistType distinguishes leaf playlists from folder links.
type PlaylistType string

const (
	TypePlaylist PlaylistType = "playlist"
	TypeFolder   PlaylistType = "folder"
)

// ValidTimeUnits are the accepted dateCreated units.
var ValidTimeUnits = []string{"day", "week", "month", "year"}

// DateCreated is a relative creation-date filter. The operator is read but
// every filter compiles to IN_LAST.
type DateCreated struct {
	TimePeriod int    `json:"timePeriod"`
	TimeUnit   string `json:"timeUnit"`
	Operator   string `json:"operator,omitempty"`

	fields map[string]bool
}

// UnmarshalJSON accepts both timePeriod/timeUnit and the older
// time_period/time_unit keys. The camel-case keys win when both appear.
func (d *DateCreated) UnmarshalJSON(data []byte) error {
	var raw struct {
		TimePeriod       *int    `json:"timePeriod"`
		TimeUnit         *string `json:"timeUnit"`
		LegacyTimePeriod *int    `json:"time_period"`
		LegacyTimeUnit   *string `json:"time_unit"`
		Operator         string  `json:"operator"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = DateCreated{Operator: raw.Operator, fields: map[string]bool{}}
	switch {
	case raw.TimePeriod != nil:
		d.TimePeriod = *raw.TimePeriod
		d.fields["timePeriod"] = true
	case raw.LegacyTimePeriod != nil:
		d.TimePeriod = *raw.LegacyTimePeriod
		d.fields["timePeriod"] = true
	}
	switch {
	case raw.TimeUnit != nil:
		d.TimeUnit = *raw.TimeUnit
		d.fields["timeUnit"] = true
	case raw.LegacyTimeUnit != nil:
		d.TimeUnit = *raw.LegacyTimeUnit
		d.fields["timeUnit"] = true
	}
	return nil
}

// Filter converts d to the smart-list form.
func (d *DateCreated) Filter() *smartlist.DateFilter {
	if d == nil {
		return nil
	}
	return &smartlist.DateFilter{Period: d.TimePeriod, Unit: d.TimeUnit}
}

// Item is one playlist or folder link inside a category.
type Item struct {
	Name           string       `json:"name"`
	Operator       Operator     `json:"operator"`
	Contains       []string     `json:"contains,omitempty"`
	DoesNotContain []string     `json:"doesNotContain,omitempty"`
	Rating         []string     `json:"rating,omitempty"`
	DateCreated    *DateCreated `json:"dateCreated,omitempty"`
	PlaylistType   PlaylistType `json:"playlistType,omitempty"`
	Link           string       `json:"link,omitempty"`

	fields map[string]bool
}

// UnmarshalJSON records which keys were present so validation can tell a
// missing field from a zero value.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := keys(data)
	if err != nil {
		return err
	}
	*i = Item(p)
	i.fields = fields
	return nil
}

// Type returns the item's playlist type, defaulting to a leaf playlist.
func (i Item) Type() PlaylistType {
	if i.PlaylistType == "" {
		return TypePlaylist
	}
	return i.PlaylistType
}

// IsFolder reports whether the item is a folder link.
func (i Item) IsFolder() bool {
	return i.Type() == TypeFolder
}

func (i Item) has(field string) bool {
	// Items built in code rather than decoded count every field as present.
	return i.fields == nil || i.fields[field]
}

// Category groups playlists under an optional parent folder and carries
// conditions inherited by every playlist in it.
type Category struct {
	Parent             string   `json:"parent"`
	MainConditions     []string `json:"mainConditions"`
	NegativeConditions []string `json:"negativeConditions,omitempty"`
	Playlists          []Item   `json:"playlists"`

	fields map[string]bool
}

// UnmarshalJSON records which keys were present.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	fields, err := keys(data)
	if err != nil {
		return err
	}
	*c = Category(p)
	c.fields = fields
	return nil
}

func (c Category) has(field string) bool {
	return c.fields == nil || c.fields[field]
}

// Document is the top-level shape of a playlist configuration file.
type Document struct {
	Categories []Category `json:"data"`
}

// UnmarshalJSON requires a "data" array.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	body, ok := raw["data"]
	if !ok {
		return fmt.Errorf("missing 'data' field in playlist configuration")
	}
	var categories []Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return fmt.Errorf("'data' field must be a list of categories: %w", err)
	}
	if categories == nil {
		return fmt.Errorf("'data' field must be a list")
	}
	d.Categories = categories
	return nil
}

// PlaylistCount returns the number of items across all categories.
func (d *Document) PlaylistCount() int {
	n := 0
	for _, c := range d.Categories {
		n += len(c.Playlists)
	}
	return n
}

func keys(data []byte) (map[string]bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	fields := make(map[string]bool, len(raw))
	for k := range raw {
		fields[k] = true
	}
	return fields, nil
}
