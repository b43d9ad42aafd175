/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlistconfig

import (
	"fmt"
	"slices"
	"strings"

	"github.com/friendsincode/smartlists/internal/apperr"
)

// Problem is one validation finding.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// Problems is a list of findings usable as an error.
type Problems []Problem

func (ps Problems) Error() string {
	msgs := make([]string, len(ps))
	for i, p := range ps {
		msgs[i] = p.String()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every category and item of doc.
func Validate(doc *Document) Problems {
	var problems Problems
	for i, category := range doc.Categories {
		problems = append(problems, validateCategory(category, fmt.Sprintf("Category %d", i))...)
	}
	return problems
}

// ValidateItem checks a single item and returns a validation error
// describing every problem, or nil.
func ValidateItem(item Item) error {
	problems := validateItem(item, "")
	if len(problems) == 0 {
		return nil
	}
	return apperr.Wrap(apperr.ErrorTypeValidation, problems, "invalid playlist %q", item.Name)
}

func validateCategory(c Category, prefix string) Problems {
	var problems Problems
	add := func(format string, args ...any) {
		problems = append(problems, Problem{Path: prefix, Message: fmt.Sprintf(format, args...)})
	}

	for _, field := range []string{"parent", "mainConditions", "playlists"} {
		if !c.has(field) {
			add("Missing required field '%s'", field)
		}
	}
	for j, name := range c.MainConditions {
		if strings.TrimSpace(name) == "" {
			add("'mainConditions[%d]' cannot be empty", j)
		}
	}
	for j, name := range c.NegativeConditions {
		if strings.TrimSpace(name) == "" {
			add("'negativeConditions[%d]' cannot be empty", j)
		}
	}
	for j, item := range c.Playlists {
		problems = append(problems, validateItem(item, fmt.Sprintf("%s.playlists[%d]", prefix, j))...)
	}
	return problems
}

func validateItem(item Item, prefix string) Problems {
	var problems Problems
	at := func(path string, format string, args ...any) {
		problems = append(problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
	}
	add := func(format string, args ...any) { at(prefix, format, args...) }

	if !item.has("name") {
		add("Missing required field 'name'")
	} else if strings.TrimSpace(item.Name) == "" {
		add("'name' cannot be empty")
	}

	if !item.has("operator") {
		add("Missing required field 'operator'")
	} else if item.Operator != OperatorAll && item.Operator != OperatorAny {
		add("'operator' must be 1 (ALL) or 2 (ANY)")
	}

	for _, field := range []struct {
		name   string
		values []string
	}{
		{"contains", item.Contains},
		{"doesNotContain", item.DoesNotContain},
	} {
		for i, v := range field.values {
			if strings.TrimSpace(v) == "" {
				add("'%s[%d]' cannot be empty", field.name, i)
			}
		}
	}

	// An empty rating list means no rating filter.
	if len(item.Rating) != 0 && len(item.Rating) != 2 {
		add("'rating' must have exactly 2 elements")
	}

	if d := item.DateCreated; d != nil {
		datePath := prefix + ".dateCreated"
		if prefix == "" {
			datePath = "dateCreated"
		}
		for _, field := range []string{"timePeriod", "timeUnit"} {
			if !d.has(field) {
				at(datePath, "Missing required field '%s'", field)
			}
		}
		if d.has("timePeriod") && d.TimePeriod <= 0 {
			at(datePath, "'timePeriod' must be positive")
		}
		if d.has("timeUnit") && !slices.Contains(ValidTimeUnits, d.TimeUnit) {
			at(datePath, "'timeUnit' must be one of %v", ValidTimeUnits)
		}
	}

	switch item.Type() {
	case TypePlaylist:
	case TypeFolder:
		if strings.TrimSpace(item.Link) == "" {
			add("Folder playlist requires 'link' field")
		}
	default:
		add("'playlistType' must be %q or %q", TypePlaylist, TypeFolder)
	}

	return problems
}

func (d *DateCreated) has(field string) bool {
	return d.fields == nil || d.fields[field]
}
