/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/smartlists/internal/compiler"
	"github.com/friendsincode/smartlists/internal/db"
	"github.com/friendsincode/smartlists/internal/library"
	"github.com/friendsincode/smartlists/internal/models"
	"github.com/friendsincode/smartlists/internal/playlistconfig"
	"github.com/friendsincode/smartlists/internal/runner"
	"github.com/friendsincode/smartlists/internal/watch"
)

var errItemsFailed = errors.New("some playlists failed")

var (
	playlistFile       string
	playlistAll        bool
	playlistSkipBackup bool
	playlistFilter     string
	playlistSmartOnly  bool
	playlistWatch      bool
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Create, list and validate smart playlists",
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create smart playlists from configuration files",
	Long: `Compile playlist configuration files into folders and smart playlists.

Existing folders and playlists are skipped, so the command can be re-run
after editing a configuration. A backup of the library is taken first
unless --skip-backup or --dry-run is given.

Examples:
  # Create from one file in the playlist data directory
  smartlists playlist create --file house.json

  # Create from every configuration file
  smartlists playlist create --all

  # Show what would be created without touching the library
  smartlists playlist create --all --dry-run
`,
	RunE: runPlaylistCreate,
}

var playlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlists in the library",
	RunE:  runPlaylistList,
}

var playlistValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate playlist configuration files",
	RunE:  runPlaylistValidate,
}

func init() {
	for _, cmd := range []*cobra.Command{playlistCreateCmd, playlistValidateCmd} {
		cmd.Flags().StringVarP(&playlistFile, "file", "f", "", "Configuration file (absolute or relative to the playlist data path)")
		cmd.Flags().BoolVar(&playlistAll, "all", false, "Process every configuration file in the playlist data path")
		cmd.MarkFlagsMutuallyExclusive("file", "all")
		cmd.MarkFlagsOneRequired("file", "all")
	}
	playlistCreateCmd.Flags().BoolVar(&playlistSkipBackup, "skip-backup", false, "Do not back up the library first")

	playlistListCmd.Flags().StringVar(&playlistFilter, "filter", "", "Only names containing this text (case-insensitive)")
	playlistListCmd.Flags().BoolVar(&playlistSmartOnly, "smart-only", false, "Only smart playlists")

	playlistValidateCmd.Flags().BoolVar(&playlistWatch, "watch", false, "Keep running and re-validate files as they change")

	playlistCmd.AddCommand(playlistCreateCmd, playlistListCmd, playlistValidateCmd)
	rootCmd.AddCommand(playlistCmd)
}

// selectedFiles returns the files named by --file or --all.
func selectedFiles() ([]string, error) {
	if playlistAll {
		files, err := playlistconfig.Discover(cfg.PlaylistDataPath)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no configuration files found in %s", cfg.PlaylistDataPath)
		}
		return files, nil
	}

	path := playlistFile
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(cfg.PlaylistDataPath, path)
		}
	}
	return []string{path}, nil
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	files, err := selectedFiles()
	if err != nil {
		return err
	}

	lib, database, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close(database)

	var guard runner.BackupGuard
	if cfg.BackupBeforeChanges {
		if len(cfg.BackupTargets()) == 0 {
			logger.Warn().Msg("no backup sources configured; running without a backup")
		} else {
			manager, err := newBackupManager(ctx)
			if err != nil {
				return err
			}
			guard = manager
		}
	}

	r := runner.New(func(ctx context.Context) (runner.Session, error) {
		return lib.Begin(ctx)
	}, guard, runner.Options{
		RootPlaylist: cfg.RootPlaylist,
		DataDir:      cfg.PlaylistDataPath,
		CommitMode:   cfg.CommitMode,
		MaxDepth:     cfg.MaxLinkDepth,
		DryRun:       cfg.DryRun,
	}, logger)

	report, runErr := r.Run(ctx, runner.Request{Files: files, SkipBackup: playlistSkipBackup})
	if report != nil {
		printReport(cmd.OutOrStdout(), report, cfg.DryRun)
	}
	pushMetrics(context.Background(), "smartlists_create")

	if runErr != nil {
		return runErr
	}
	if report.HasFailures() {
		return errItemsFailed
	}
	return nil
}

func printReport(w io.Writer, report *compiler.Report, dry bool) {
	created, skipped, failed := report.Counts()
	if dry {
		fmt.Fprintln(w, "Dry run, nothing was committed.")
	}
	fmt.Fprintf(w, "Created: %d\nSkipped: %d\nFailed: %d\n", created, skipped, failed)

	if results := report.Filter(compiler.StatusSkipped); len(results) > 0 {
		fmt.Fprintln(w, "\nSkipped:")
		for _, res := range results {
			fmt.Fprintf(w, "  %s: %s\n", res.Path, res.Message())
		}
	}
	if results := report.Filter(compiler.StatusFailed); len(results) > 0 {
		fmt.Fprintln(w, "\nFailed:")
		for _, res := range results {
			fmt.Fprintf(w, "  %s: %s\n", res.Path, res.Message())
		}
	}
	if missing := report.MissingTags(); len(missing) > 0 {
		fmt.Fprintf(w, "\nUnknown tags (dropped): %s\n", strings.Join(missing, ", "))
	}
}

func runPlaylistList(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	lib, database, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close(database)

	ctx := cmd.Context()
	all, err := lib.Playlists(ctx, "", false)
	if err != nil {
		return err
	}
	byID := make(map[int64]models.Playlist, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	matches, err := lib.Playlists(ctx, playlistFilter, playlistSmartOnly)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range matches {
		fmt.Fprintf(out, "%6d  %-8s  %s\n", p.ID, p.Attribute, library.Path(byID, p.ID))
	}
	fmt.Fprintf(out, "%d playlists\n", len(matches))
	return nil
}

func runPlaylistValidate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	files, err := selectedFiles()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := validateFiles(out, files)
	if !playlistWatch {
		if invalid > 0 {
			return fmt.Errorf("%d of %d files are invalid", invalid, len(files))
		}
		return nil
	}

	ctx, stop := signalContext()
	defer stop()

	dir := cfg.PlaylistDataPath
	if !playlistAll {
		dir = filepath.Dir(files[0])
	}
	w := watch.New(dir, watch.DefaultQuiet, logger)
	return w.Run(ctx, func(paths []string) {
		var present []string
		for _, p := range paths {
			if !playlistAll && filepath.Clean(p) != filepath.Clean(files[0]) {
				continue
			}
			if _, err := os.Stat(p); err != nil {
				fmt.Fprintf(out, "%s: removed\n", p)
				continue
			}
			present = append(present, p)
		}
		validateFiles(out, present)
	})
}

// validateFiles prints the problems of each file and returns how many were invalid.
func validateFiles(w io.Writer, files []string) int {
	invalid := 0
	for _, file := range files {
		doc, err := playlistconfig.Load(file)
		if err != nil {
			invalid++
			fmt.Fprintf(w, "%s: %v\n", file, err)
			continue
		}
		problems := playlistconfig.Validate(doc)
		if len(problems) == 0 {
			fmt.Fprintf(w, "%s: ok (%d playlists)\n", file, doc.PlaylistCount())
			continue
		}
		invalid++
		fmt.Fprintf(w, "%s: %d problems\n", file, len(problems))
		for _, p := range problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	return invalid
}
