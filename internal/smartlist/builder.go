/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartlist

import (
	"context"

	"github.com/friendsincode/smartlists/internal/apperr"
	"github.com/friendsincode/smartlists/internal/telemetry"
	"github.com/rs/zerolog"
)

// TagResolver maps an exact tag name to its library id. A name that matches
// nothing yields an error for which apperr.IsNotFound is true.
type TagResolver interface {
	ResolveTag(ctx context.Context, name string) (int64, error)
}

// DateFilter restricts a smart list to tracks added in the last Period Units.
// Unit is stored as given.
type DateFilter struct {
	Period int
	Unit   string
}

// Request describes the smart list for one playlist.
type Request struct {
	Include TagSet
	// Exclude is only applied when Logical is ALL.
	Exclude     TagSet
	Logical     LogicalOperator
	Rating      []string
	DateCreated *DateFilter
}

// Builder turns a Request into a Definition.
type Builder struct {
	resolver TagResolver
	logger   zerolog.Logger
}

// NewBuilder creates a builder that resolves tags through resolver.
func NewBuilder(resolver TagResolver, logger zerolog.Logger) *Builder {
	return &Builder{
		resolver: resolver,
		logger:   logger.With().Str("component", "smartlist").Logger(),
	}
}

// Build compiles req. Tags that do not resolve are left out of the
// definition and returned in missing; any other resolver error is returned.
// Malformed requests yield a validation error.
func (b *Builder) Build(ctx context.Context, req Request) (Definition, []string, error) {
	if !req.Logical.Valid() {
		return Definition{}, nil, apperr.Validation("invalid logical operator %d", int(req.Logical))
	}
	if len(req.Rating) != 0 && len(req.Rating) != 2 {
		return Definition{}, nil, apperr.Validation("rating must have exactly two values, got %d", len(req.Rating))
	}
	if req.DateCreated != nil && req.DateCreated.Period <= 0 {
		return Definition{}, nil, apperr.Validation("dateCreated timePeriod must be positive, got %d", req.DateCreated.Period)
	}

	def := Definition{Logical: req.Logical}
	var missing []string

	add := func(names []string, op Operator) error {
		for _, name := range names {
			id, err := b.resolver.ResolveTag(ctx, name)
			if err != nil {
				if apperr.IsNotFound(err) {
					b.logger.Warn().Str("tag", name).Str("operator", op.String()).Msg("tag not found, condition skipped")
					telemetry.TagResolutionMissesTotal.Inc()
					missing = append(missing, name)
					continue
				}
				return err
			}
			b.logger.Debug().Str("tag", name).Int64("tag_id", id).Str("operator", op.String()).Msg("added tag condition")
			def.Conditions = append(def.Conditions, TagCondition(op, id))
		}
		return nil
	}

	if err := add(req.Include.Names(), OperatorContains); err != nil {
		return Definition{}, missing, err
	}
	if req.Logical == LogicalAll {
		if err := add(req.Exclude.Names(), OperatorNotContains); err != nil {
			return Definition{}, missing, err
		}
	}

	if len(req.Rating) == 2 {
		def.Conditions = append(def.Conditions, RatingCondition(req.Rating[0], req.Rating[1]))
	}
	if req.DateCreated != nil {
		def.Conditions = append(def.Conditions, DateCreatedCondition(req.DateCreated.Period, req.DateCreated.Unit))
	}

	return def, missing, nil
}
