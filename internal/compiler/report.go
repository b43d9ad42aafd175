/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package compiler

import (
	"github.com/friendsincode/smartlists/internal/smartlist"
)

// Status is the outcome of one configuration item.
type Status string

const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result records what happened to one item.
type Result struct {
	Status Status
	Name   string
	// Path is the breadcrumb of folder names leading to the item, including
	// the item itself.
	Path   string
	Source string
	Folder bool
	// Reason explains a skip; Err explains a failure.
	Reason      string
	Err         error
	PlaylistID  int64
	MissingTags []string
	Definition  *smartlist.Definition
}

// Message returns the skip reason or failure text.
func (r Result) Message() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Reason
}

// Report is the ordered list of results of a run.
type Report struct {
	Results []Result
}

// Add appends r.
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

// Counts tallies results by status.
func (r *Report) Counts() (created, skipped, failed int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusCreated:
			created++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return created, skipped, failed
}

// HasFailures reports whether any item failed.
func (r *Report) HasFailures() bool {
	_, _, failed := r.Counts()
	return failed > 0
}

// Filter returns the results with the given status, in order.
func (r *Report) Filter(status Status) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out
}

// MissingTags returns every tag name that failed to resolve, once each, in
// first-seen order.
func (r *Report) MissingTags() []string {
	set := smartlist.TagSet{}
	for _, res := range r.Results {
		set = set.Union(res.MissingTags...)
	}
	return set.Names()
}
