/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/friendsincode/smartlists/internal/backup"
	"github.com/friendsincode/smartlists/internal/config"
	"github.com/friendsincode/smartlists/internal/db"
	"github.com/friendsincode/smartlists/internal/library"
	"github.com/friendsincode/smartlists/internal/logging"
	"github.com/friendsincode/smartlists/internal/storage"
	"github.com/friendsincode/smartlists/internal/telemetry"
	"github.com/friendsincode/smartlists/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config

	configFile string
	logLevel   string
	logFile    string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "smartlists",
	Short: "Smart playlist hierarchy compiler for DJ libraries",
	Long: `smartlists turns JSON playlist configuration files into a folder tree of
smart playlists inside a DJ library database.

Runs are idempotent: playlists and folders that already exist are skipped.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("smartlists", version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML settings file (default $SMARTLISTS_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Compile without committing any change")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}

	logger = logging.Setup(logging.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
	})
	for _, warning := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warning)
	}
	return nil
}

// openLibrary connects to the library database. The schema must already
// exist; only the migrate command creates or changes it.
func openLibrary() (*library.Library, *gorm.DB, error) {
	database, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.CheckSchema(database); err != nil {
		_ = db.Close(database)
		return nil, nil, err
	}
	return library.New(database, logger), database, nil
}

// newBackupManager builds the backup manager from configuration. The object
// store copy is attached only when a bucket is configured.
func newBackupManager(ctx context.Context) (*backup.Manager, error) {
	opts := backup.Options{
		Dir:        cfg.BackupDir,
		Sources:    cfg.BackupTargets(),
		MaxBackups: cfg.MaxBackups,
	}

	if cfg.BackupStorageEnabled() {
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize backup storage: %w", err)
		}
		opts.Store = store
	}

	return backup.NewManager(opts, logger), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func pushMetrics(ctx context.Context, job string) {
	err := telemetry.Push(ctx, telemetry.PushConfig{
		GatewayURL: cfg.PushGatewayURL,
		Job:        job,
		Instance:   cfg.InstanceID,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to push metrics")
	}
}
