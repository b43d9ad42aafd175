/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package backup snapshots the library files into timestamped zip archives
// before they are modified, and restores them.
package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/friendsincode/smartlists/internal/storage"
	"github.com/friendsincode/smartlists/internal/telemetry"
	"github.com/friendsincode/smartlists/internal/version"
	"github.com/rs/zerolog"
)

const (
	// DefaultLabel names backups created without an explicit label.
	DefaultLabel = "smartlists_backup"
	// SafetyLabel names the backup taken before a restore.
	SafetyLabel = "safety_backup_before_restore"

	metadataFile    = "backup_metadata.json"
	contentSuffix   = "_content"
	timestampLayout = "20060102_150405"
)

// ErrInvalidBackup is wrapped by Validate for archives that fail a check.
var ErrInvalidBackup = errors.New("invalid backup")

// Metadata is stored inside every archive.
type Metadata struct {
	BackupName  string            `json:"backup_name"`
	Created     time.Time         `json:"created"`
	CreatedBy   string            `json:"created_by"`
	Version     string            `json:"version"`
	SourcePaths map[string]string `json:"source_paths"`
	MaxBackups  int               `json:"max_backups"`
}

// Info describes a backup archive on disk.
type Info struct {
	Path     string
	Name     string
	Size     int64
	Created  time.Time
	Metadata *Metadata
}

// Options configures a Manager.
type Options struct {
	Dir string
	// Sources are the files or directories to archive. Each is stored under
	// its base name.
	Sources    []string
	MaxBackups int
	// Store, when set, receives a copy of each archive.
	Store storage.ObjectStore
	Now   func() time.Time
}

// Manager creates, lists, validates and restores backups.
type Manager struct {
	opts   Options
	logger zerolog.Logger
}

// NewManager creates a backup manager.
func NewManager(opts Options, logger zerolog.Logger) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		opts:   opts,
		logger: logger.With().Str("component", "backup").Logger(),
	}
}

// Create writes <label>_<timestamp>.zip into the backup directory,
// validates it, copies it to object storage when configured and prunes old
// archives. An empty label uses DefaultLabel.
func (m *Manager) Create(ctx context.Context, label string) (string, error) {
	path, err := m.create(ctx, label)
	if err != nil {
		telemetry.BackupsTotal.WithLabelValues("failed").Inc()
		return "", err
	}
	telemetry.BackupsTotal.WithLabelValues("created").Inc()
	return path, nil
}

func (m *Manager) create(ctx context.Context, label string) (string, error) {
	if len(m.opts.Sources) == 0 {
		return "", fmt.Errorf("no backup sources configured")
	}
	if err := os.MkdirAll(m.opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	label = strings.TrimSuffix(strings.TrimSpace(label), ".zip")
	if label == "" {
		label = DefaultLabel
	}
	now := m.opts.Now()
	name := fmt.Sprintf("%s_%s", label, now.Format(timestampLayout))
	path := filepath.Join(m.opts.Dir, name+".zip")
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(m.opts.Dir, fmt.Sprintf("%s_%d.zip", name, i))
	}

	m.logger.Info().Str("path", path).Msg("creating backup")

	meta := Metadata{
		BackupName:  name,
		Created:     now,
		CreatedBy:   "smartlists",
		Version:     version.Version,
		SourcePaths: map[string]string{},
		MaxBackups:  m.opts.MaxBackups,
	}
	if err := m.writeArchive(ctx, path, name+contentSuffix, meta); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	if err := m.Validate(path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("backup validation failed: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	telemetry.BackupSizeBytes.Set(float64(info.Size()))
	m.logger.Info().Str("path", path).Int64("size_bytes", info.Size()).Msg("backup created")

	if m.opts.Store != nil {
		if err := m.upload(ctx, path); err != nil {
			m.logger.Warn().Err(err).Str("path", path).Msg("off-site backup copy failed")
		}
	}

	if m.opts.MaxBackups > 0 {
		if _, err := m.Cleanup(ctx, m.opts.MaxBackups); err != nil {
			m.logger.Warn().Err(err).Msg("backup cleanup failed")
		}
	}

	return path, nil
}

func (m *Manager) writeArchive(ctx context.Context, path, content string, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	archived := 0
	for _, src := range m.opts.Sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := os.Stat(src); err != nil {
			m.logger.Warn().Str("source", src).Msg("backup source not found, skipped")
			continue
		}
		base := filepath.Base(src)
		if err := addTree(zw, src, content+"/"+base); err != nil {
			return fmt.Errorf("archive %s: %w", src, err)
		}
		meta.SourcePaths[base] = src
		archived++
	}
	if archived == 0 {
		return fmt.Errorf("none of the backup sources exist")
	}

	w, err := zw.Create(content + "/" + metadataFile)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return f.Close()
}

func addTree(zw *zip.Writer, src, prefix string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		name := prefix
		if rel != "." {
			name = prefix + "/" + filepath.ToSlash(rel)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		if d.IsDir() {
			header.Name += "/"
			_, err := zw.CreateHeader(header)
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
}

// Validate checks that path is a readable archive with metadata and at
// least one backed-up file.
func (m *Manager) Validate(path string) error {
	_, err := readArchive(path)
	return err
}

func readArchive(path string) (*Metadata, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBackup, path, err)
	}
	defer zr.Close()

	var meta *Metadata
	files := 0
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidBackup, f.Name, err)
		}
		if pathBase(f.Name) == metadataFile {
			var md Metadata
			err = json.NewDecoder(rc).Decode(&md)
			if err == nil {
				meta = &md
			}
			// Drain so the checksum is verified.
			_, _ = io.Copy(io.Discard, rc)
		} else {
			_, err = io.Copy(io.Discard, rc)
			files++
		}
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidBackup, f.Name, err)
		}
	}

	if meta == nil {
		return nil, fmt.Errorf("%w: %s has no %s", ErrInvalidBackup, path, metadataFile)
	}
	if files == 0 {
		return nil, fmt.Errorf("%w: %s contains no library files", ErrInvalidBackup, path)
	}
	return meta, nil
}

// List returns the archives in the backup directory, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.opts.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		info := Info{
			Path:    filepath.Join(m.opts.Dir, entry.Name()),
			Name:    strings.TrimSuffix(entry.Name(), ".zip"),
			Size:    fi.Size(),
			Created: fi.ModTime(),
		}
		if meta, err := readMetadata(info.Path); err == nil {
			info.Metadata = meta
			info.Created = meta.Created
		}
		backups = append(backups, info)
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Created.Equal(backups[j].Created) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].Created.After(backups[j].Created)
	})
	return backups, nil
}

func readMetadata(path string) (*Metadata, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if pathBase(f.Name) != metadataFile {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		var meta Metadata
		if err := json.NewDecoder(rc).Decode(&meta); err != nil {
			return nil, err
		}
		return &meta, nil
	}
	return nil, fs.ErrNotExist
}

// Delete removes a backup and its off-site copy.
func (m *Manager) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	if m.opts.Store != nil {
		if err := m.opts.Store.Delete(ctx, filepath.Base(path)); err != nil {
			m.logger.Warn().Err(err).Str("path", path).Msg("off-site backup delete failed")
		}
	}
	m.logger.Info().Str("path", path).Msg("backup deleted")
	return nil
}

// Cleanup keeps the newest keep archives and deletes the rest, returning
// the removed paths.
func (m *Manager) Cleanup(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative")
	}
	backups, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return nil, nil
	}

	var removed []string
	for _, b := range backups[keep:] {
		if err := m.Delete(ctx, b.Path); err != nil {
			return removed, err
		}
		removed = append(removed, b.Path)
	}
	m.logger.Info().Int("removed", len(removed)).Int("kept", keep).Msg("old backups cleaned up")
	return removed, nil
}

func (m *Manager) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.opts.Store.Put(ctx, filepath.Base(path), f)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func pathBase(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
