/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartlist

// TagSet is an immutable, insertion-ordered set of tag names. Union never
// modifies its receiver, so a set handed to one branch of a tree walk cannot
// leak additions into a sibling branch.
type TagSet struct {
	names []string
}

// NewTagSet builds a set from names, dropping empty strings and duplicates.
func NewTagSet(names ...string) TagSet {
	return TagSet{}.Union(names...)
}

// Union returns a new set holding s followed by any names not already in s.
func (s TagSet) Union(names ...string) TagSet {
	out := make([]string, len(s.names), len(s.names)+len(names))
	copy(out, s.names)
	for _, name := range names {
		if name == "" || contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return TagSet{names: out}
}

// Merge returns the union of s and other.
func (s TagSet) Merge(other TagSet) TagSet {
	return s.Union(other.names...)
}

// Names returns a copy of the members in insertion order.
func (s TagSet) Names() []string {
	if len(s.names) == 0 {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Contains reports whether name is a member.
func (s TagSet) Contains(name string) bool {
	return contains(s.names, name)
}

// Len returns the number of members.
func (s TagSet) Len() int {
	return len(s.names)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
