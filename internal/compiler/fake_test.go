package compiler

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/friendsincode/smartlists/internal/apperr"
	"github.com/friendsincode/smartlists/internal/models"
	"github.com/friendsincode/smartlists/internal/playlistconfig"
	"github.com/friendsincode/smartlists/internal/smartlist"
)

type fakeStore struct {
	nextID    int64
	playlists map[int64]*models.Playlist
	tags      map[string]int64
	defs      map[int64]smartlist.Definition

	rejectNames map[string]bool
	breakNames  map[string]bool
	lookups     int
}

func newFakeStore(tags map[string]int64) *fakeStore {
	return &fakeStore{
		nextID:      100,
		playlists:   map[int64]*models.Playlist{},
		tags:        tags,
		defs:        map[int64]smartlist.Definition{},
		rejectNames: map[string]bool{},
		breakNames:  map[string]bool{},
	}
}

func (f *fakeStore) ResolveTag(_ context.Context, name string) (int64, error) {
	id, ok := f.tags[name]
	if !ok {
		return 0, apperr.NotFound("tag %q", name)
	}
	return id, nil
}

func (f *fakeStore) FindPlaylist(_ context.Context, name string, parentID int64) (*models.Playlist, error) {
	f.lookups++
	if f.breakNames[name] {
		return nil, errors.New("database connection lost")
	}
	for _, p := range f.playlists {
		if p.Name == name && p.ParentID == parentID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) add(name string, parentID int64, attr models.PlaylistAttribute) (*models.Playlist, error) {
	if f.rejectNames[name] {
		return nil, apperr.New(apperr.ErrorTypeCreation, "create %q rejected", name)
	}
	if parentID != models.RootParentID {
		parent, ok := f.playlists[parentID]
		if !ok || !parent.IsFolder() {
			return nil, apperr.New(apperr.ErrorTypeCreation, "bad parent %d", parentID)
		}
	}
	f.nextID++
	p := &models.Playlist{ID: f.nextID, Name: name, ParentID: parentID, Attribute: attr}
	f.playlists[p.ID] = p
	return p, nil
}

func (f *fakeStore) CreateFolder(_ context.Context, name string, parentID int64) (*models.Playlist, error) {
	return f.add(name, parentID, models.AttributeFolder)
}

func (f *fakeStore) CreateSmartPlaylist(_ context.Context, name string, def smartlist.Definition, parentID int64) (*models.Playlist, error) {
	p, err := f.add(name, parentID, models.AttributeSmart)
	if err != nil {
		return nil, err
	}
	f.defs[p.ID] = def
	return p, nil
}

func (f *fakeStore) folder(name string, parentID int64) *models.Playlist {
	p, _ := f.add(name, parentID, models.AttributeFolder)
	return p
}

func (f *fakeStore) count() int {
	return len(f.playlists)
}

// child returns the node named name under parentID, or nil.
func (f *fakeStore) child(name string, parentID int64) *models.Playlist {
	p, _ := f.FindPlaylist(context.Background(), name, parentID)
	return p
}

type fakeLoader map[string]*playlistconfig.Document

func (l fakeLoader) Resolve(link string) string {
	return path.Clean(link)
}

func (l fakeLoader) Load(link string) (*playlistconfig.Document, error) {
	doc, ok := l[l.Resolve(link)]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file or directory", link)
	}
	return doc, nil
}

func mustParse(s string) *playlistconfig.Document {
	doc, err := playlistconfig.Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return doc
}
