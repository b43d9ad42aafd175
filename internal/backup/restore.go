/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package backup

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/friendsincode/smartlists/internal/storage"
)

// Restore replaces the configured sources with their copies from the
// archive at path. A safety backup of the current state is taken first;
// failing to take it is logged and does not stop the restore. When path is
// missing locally and object storage is configured, the archive is fetched
// from there.
func (m *Manager) Restore(ctx context.Context, path string) error {
	if !fileExists(path) {
		if err := m.fetch(ctx, path); err != nil {
			return err
		}
	}
	if err := m.Validate(path); err != nil {
		return err
	}

	staging, err := os.MkdirTemp(m.opts.Dir, ".restore-")
	if err != nil {
		return fmt.Errorf("create restore staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	// Unpack before the safety backup, whose pruning may remove path.
	content, err := extract(path, staging)
	if err != nil {
		return err
	}

	if safety, err := m.Create(ctx, SafetyLabel); err != nil {
		m.logger.Warn().Err(err).Msg("failed to create safety backup, continuing anyway")
	} else {
		m.logger.Info().Str("path", safety).Msg("safety backup created")
	}

	restored := 0
	for _, target := range m.opts.Sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := filepath.Join(content, filepath.Base(target))
		if !fileExists(src) {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("remove %s: %w", target, err)
		}
		if err := copyTree(src, target); err != nil {
			return fmt.Errorf("restore %s: %w", target, err)
		}
		m.logger.Info().Str("target", target).Msg("restored")
		restored++
	}
	if restored == 0 {
		return fmt.Errorf("%w: %s holds none of the configured sources", ErrInvalidBackup, path)
	}
	return nil
}

func (m *Manager) fetch(ctx context.Context, path string) error {
	if m.opts.Store == nil {
		return fmt.Errorf("backup not found: %s", path)
	}
	body, err := m.opts.Store.Get(ctx, filepath.Base(path))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("backup not found locally or in object storage: %s", path)
		}
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("download backup: %w", err)
	}
	m.logger.Info().Str("path", path).Msg("fetched backup from object storage")
	return f.Close()
}

// extract unpacks the archive into dir and returns the content directory.
func extract(path, dir string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer zr.Close()

	content := ""
	for _, f := range zr.File {
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return "", fmt.Errorf("%w: entry %q escapes the archive", ErrInvalidBackup, f.Name)
		}
		if top, _, _ := strings.Cut(f.Name, "/"); content == "" && strings.HasSuffix(top, contentSuffix) {
			content = filepath.Join(dir, top)
		}

		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", err
		}
		if err := extractFile(f, target); err != nil {
			return "", err
		}
	}

	if content == "" {
		return "", fmt.Errorf("%w: backup content directory not found", ErrInvalidBackup)
	}
	return content, nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode().Perm()|0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0o600)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}
