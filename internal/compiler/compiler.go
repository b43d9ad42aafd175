/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package compiler turns playlist configuration trees into folders and smart
// playlists in the library.
package compiler

import (
	"context"
	"errors"
	"strings"

	"github.com/friendsincode/smartlists/internal/apperr"
	"github.com/friendsincode/smartlists/internal/models"
	"github.com/friendsincode/smartlists/internal/playlistconfig"
	"github.com/friendsincode/smartlists/internal/smartlist"
	"github.com/friendsincode/smartlists/internal/telemetry"
	"github.com/rs/zerolog"
)

var (
	// ErrLinkCycle is wrapped when a folder link leads back to a file that
	// is already being compiled on the same branch.
	ErrLinkCycle = errors.New("folder link cycle")
	// ErrDepthExceeded is wrapped when folder links nest deeper than allowed.
	ErrDepthExceeded = errors.New("folder link depth exceeded")
)

// DefaultMaxDepth bounds folder link nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 16

// Store is the slice of the library the compiler writes through.
// FindPlaylist returns nil, nil when nothing matches. Create methods report
// rejected writes with an apperr CREATION error; any other error aborts the
// run.
type Store interface {
	smartlist.TagResolver
	FindPlaylist(ctx context.Context, name string, parentID int64) (*models.Playlist, error)
	CreateFolder(ctx context.Context, name string, parentID int64) (*models.Playlist, error)
	CreateSmartPlaylist(ctx context.Context, name string, def smartlist.Definition, parentID int64) (*models.Playlist, error)
}

// Loader reads linked configuration files. Resolve must return the same key
// for every link naming the same file.
type Loader interface {
	Resolve(link string) string
	Load(link string) (*playlistconfig.Document, error)
}

// Options tunes a Compiler.
type Options struct {
	MaxDepth int
	// Checkpoint, when set, runs after each top-level category.
	Checkpoint func(ctx context.Context) error
}

// Compiler walks configuration trees. It keeps no state between calls and
// must not be used concurrently with another writer on the same store.
type Compiler struct {
	store   Store
	loader  Loader
	builder *smartlist.Builder
	opts    Options
	logger  zerolog.Logger
}

// New creates a compiler writing through store.
func New(store Store, loader Loader, opts Options, logger zerolog.Logger) *Compiler {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Compiler{
		store:   store,
		loader:  loader,
		builder: smartlist.NewBuilder(store, logger),
		opts:    opts,
		logger:  logger.With().Str("component", "compiler").Logger(),
	}
}

// branch is the per-recursion view of where the walk is. Values are copied
// on descent so siblings never share additions.
type branch struct {
	source  string
	depth   int
	visited map[string]bool
	path    []string
}

func (b branch) enter(source, name string) branch {
	visited := make(map[string]bool, len(b.visited)+1)
	for k := range b.visited {
		visited[k] = true
	}
	visited[source] = true
	return branch{source: source, depth: b.depth + 1, visited: visited, path: b.with(name)}
}

func (b branch) with(name string) []string {
	path := make([]string, len(b.path), len(b.path)+1)
	copy(path, b.path)
	return append(path, name)
}

// CompileDocument compiles every category of doc under root. source names
// the file doc came from; links back to it are treated as cycles.
func (c *Compiler) CompileDocument(ctx context.Context, report *Report, doc *playlistconfig.Document, source string, root *models.Playlist) error {
	br := branch{source: source, visited: map[string]bool{}}
	if source != "" {
		br.visited[source] = true
	}
	return c.compileCategories(ctx, report, doc.Categories, root, smartlist.TagSet{}, smartlist.TagSet{}, br)
}

// CompileCategories compiles categories under parent with the given
// inherited tag sets.
func (c *Compiler) CompileCategories(ctx context.Context, report *Report, categories []playlistconfig.Category, parent *models.Playlist, include, exclude smartlist.TagSet) error {
	return c.compileCategories(ctx, report, categories, parent, include, exclude, branch{visited: map[string]bool{}})
}

func (c *Compiler) compileCategories(ctx context.Context, report *Report, categories []playlistconfig.Category, parent *models.Playlist, include, exclude smartlist.TagSet, br branch) error {
	for i, category := range categories {
		if err := ctx.Err(); err != nil {
			return err
		}

		attach, path, err := c.categoryFolder(ctx, report, category, parent, br)
		if err != nil {
			return err
		}

		if attach != nil {
			categoryInclude := include.Union(category.MainConditions...)
			categoryExclude := exclude.Union(category.NegativeConditions...)
			itemBranch := br
			itemBranch.path = path

			for _, item := range category.Playlists {
				if err := c.compileItem(ctx, report, item, attach, categoryInclude, categoryExclude, itemBranch); err != nil {
					return err
				}
			}
		}

		if br.depth == 0 && c.opts.Checkpoint != nil {
			if err := c.opts.Checkpoint(ctx); err != nil {
				return err
			}
			c.logger.Debug().Int("category", i).Msg("category committed")
		}
	}
	return nil
}

// categoryFolder returns the node a category's playlists attach to, or nil
// when the category could not be placed and was recorded as failed.
func (c *Compiler) categoryFolder(ctx context.Context, report *Report, category playlistconfig.Category, parent *models.Playlist, br branch) (*models.Playlist, []string, error) {
	if category.Parent == "" {
		return parent, br.path, nil
	}

	path := br.with(category.Parent)
	existing, err := c.store.FindPlaylist(ctx, category.Parent, parent.ID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		if existing.IsFolder() {
			c.logger.Debug().Str("folder", category.Parent).Int64("id", existing.ID).Msg("reusing category folder")
			return existing, path, nil
		}
		err := apperr.New(apperr.ErrorTypeCreation, "category parent %q exists and is not a folder", category.Parent)
		c.record(report, Result{Status: StatusFailed, Name: category.Parent, Path: joinPath(path), Source: br.source, Folder: true, Err: err})
		return nil, nil, nil
	}

	folder, err := c.store.CreateFolder(ctx, category.Parent, parent.ID)
	if err != nil {
		if recoverable(err) {
			c.record(report, Result{Status: StatusFailed, Name: category.Parent, Path: joinPath(path), Source: br.source, Folder: true, Err: err})
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return folder, path, nil
}

func (c *Compiler) compileItem(ctx context.Context, report *Report, item playlistconfig.Item, parent *models.Playlist, include, exclude smartlist.TagSet, br branch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := br.with(item.Name)
	res := Result{Name: item.Name, Path: joinPath(path), Source: br.source, Folder: item.IsFolder()}
	fail := func(err error) error {
		res.Status = StatusFailed
		res.Err = err
		c.record(report, res)
		return nil
	}

	if err := playlistconfig.ValidateItem(item); err != nil {
		return fail(err)
	}

	existing, err := c.store.FindPlaylist(ctx, item.Name, parent.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		res.Status = StatusSkipped
		res.PlaylistID = existing.ID
		res.Reason = "already exists"
		if existing.IsFolder() {
			res.Reason = "folder already exists"
		}
		c.record(report, res)
		return nil
	}

	include = include.Union(item.Contains...)
	exclude = exclude.Union(item.DoesNotContain...)

	if item.IsFolder() {
		if br.depth+1 > c.opts.MaxDepth {
			return fail(apperr.Wrap(apperr.ErrorTypeLink, ErrDepthExceeded, "link %q nested deeper than %d", item.Link, c.opts.MaxDepth))
		}
		key := c.loader.Resolve(item.Link)
		if br.visited[key] {
			return fail(apperr.Wrap(apperr.ErrorTypeLink, ErrLinkCycle, "link %q", item.Link))
		}
		doc, err := c.loader.Load(item.Link)
		if err != nil {
			return fail(apperr.Wrap(apperr.ErrorTypeLink, err, "failed to process linked config %s", item.Link))
		}

		folder, err := c.store.CreateFolder(ctx, item.Name, parent.ID)
		if err != nil {
			if recoverable(err) {
				return fail(err)
			}
			return err
		}
		res.Status = StatusCreated
		res.PlaylistID = folder.ID
		c.record(report, res)

		child := br.enter(key, item.Name)
		return c.compileCategories(ctx, report, doc.Categories, folder, include, exclude, child)
	}

	def, missing, err := c.builder.Build(ctx, smartlist.Request{
		Include:     include,
		Exclude:     exclude,
		Logical:     item.Operator.Logical(),
		Rating:      item.Rating,
		DateCreated: item.DateCreated.Filter(),
	})
	res.MissingTags = missing
	if err != nil {
		if recoverable(err) {
			return fail(err)
		}
		return err
	}

	playlist, err := c.store.CreateSmartPlaylist(ctx, item.Name, def, parent.ID)
	if err != nil {
		if recoverable(err) {
			return fail(err)
		}
		return err
	}

	res.Status = StatusCreated
	res.PlaylistID = playlist.ID
	res.Definition = &def
	c.record(report, res)
	return nil
}

func (c *Compiler) record(report *Report, res Result) {
	telemetry.PlaylistResultsTotal.WithLabelValues(string(res.Status)).Inc()

	var event *zerolog.Event
	switch res.Status {
	case StatusFailed:
		event = c.logger.Error().Err(res.Err)
	case StatusSkipped:
		event = c.logger.Info().Str("reason", res.Reason)
	default:
		event = c.logger.Info()
	}
	event.Str("status", string(res.Status)).
		Str("name", res.Name).
		Str("path", res.Path).
		Bool("folder", res.Folder).
		Strs("missing_tags", res.MissingTags).
		Msg("playlist " + string(res.Status))

	report.Add(res)
}

// recoverable reports whether err fails only the current item.
func recoverable(err error) bool {
	return apperr.IsValidation(err) || apperr.IsLink(err) || apperr.IsCreation(err)
}

func joinPath(parts []string) string {
	return strings.Join(parts, " / ")
}
