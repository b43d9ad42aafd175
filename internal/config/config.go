/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// CommitMode decides how often a create run commits to the library.
type CommitMode string

const (
	// CommitPerRun commits once after the whole tree is compiled.
	CommitPerRun CommitMode = "run"
	// CommitPerCategory commits after every top-level category.
	CommitPerCategory CommitMode = "category"
)

// Config covers process level configuration. Values come from defaults,
// then an optional YAML settings file, then the environment.
type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`

	DBBackend DatabaseBackend `yaml:"db_backend"`
	DBDSN     string          `yaml:"db_dsn"`

	// Playlist compilation
	PlaylistDataPath string     `yaml:"playlist_data_path"`
	RootPlaylist     string     `yaml:"root_playlist"`
	CommitMode       CommitMode `yaml:"commit_mode"`
	MaxLinkDepth     int        `yaml:"max_link_depth"`
	DryRun           bool       `yaml:"dry_run"`

	// Backups
	BackupDir           string   `yaml:"backup_dir"`
	BackupSources       []string `yaml:"backup_sources"`
	MaxBackups          int      `yaml:"max_backups"`
	BackupBeforeChanges bool     `yaml:"backup_before_changes"`

	// S3 copy of backup archives (optional)
	S3Bucket          string `yaml:"s3_bucket"`
	S3Prefix          string `yaml:"s3_prefix"`
	S3Region          string `yaml:"s3_region"`
	S3Endpoint        string `yaml:"s3_endpoint"` // For S3-compatible services (MinIO, Spaces, etc.)
	S3AccessKeyID     string `yaml:"-"`
	S3SecretAccessKey string `yaml:"-"`
	S3UsePathStyle    bool   `yaml:"s3_use_path_style"`

	// Metrics
	PushGatewayURL string `yaml:"push_gateway_url"`
	InstanceID     string `yaml:"instance_id"`

	SettingsFile      string   `yaml:"-"`
	LegacyEnvWarnings []string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment:         "production",
		LogLevel:            "info",
		DBBackend:           DatabaseSQLite,
		DBDSN:               "library.db",
		PlaylistDataPath:    "playlist-data",
		RootPlaylist:        "Smart Playlists",
		CommitMode:          CommitPerRun,
		MaxLinkDepth:        16,
		BackupDir:           "backups",
		MaxBackups:          10,
		BackupBeforeChanges: true,
		S3Region:            "us-east-1",
	}
}

// Load reads a .env file if present, the YAML settings file (settingsPath,
// or SMARTLISTS_CONFIG_FILE when empty), then environment variables, and
// validates the result.
func Load(settingsPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if settingsPath == "" {
		settingsPath = getEnvAny([]string{"SMARTLISTS_CONFIG_FILE"}, "")
	}
	if settingsPath != "" {
		if err := cfg.readSettings(settingsPath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

func (c *Config) readSettings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse settings file %s: %w", path, err)
	}
	c.SettingsFile = path
	return nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnvAny([]string{"SMARTLISTS_ENV"}, c.Environment)
	c.LogLevel = getEnvAny([]string{"SMARTLISTS_LOG_LEVEL", "REKORDBOX_LOG_LEVEL"}, c.LogLevel)
	c.LogFile = getEnvAny([]string{"SMARTLISTS_LOG_FILE", "REKORDBOX_LOG_FILE"}, c.LogFile)

	c.DBBackend = DatabaseBackend(getEnvAny([]string{"SMARTLISTS_DB_BACKEND"}, string(c.DBBackend)))
	c.DBDSN = getEnvAny([]string{"SMARTLISTS_DB_DSN"}, c.DBDSN)

	c.PlaylistDataPath = getEnvAny([]string{"SMARTLISTS_PLAYLIST_DATA_PATH", "REKORDBOX_PLAYLIST_DATA_PATH"}, c.PlaylistDataPath)
	c.RootPlaylist = getEnvAny([]string{"SMARTLISTS_ROOT_PLAYLIST"}, c.RootPlaylist)
	c.CommitMode = CommitMode(getEnvAny([]string{"SMARTLISTS_COMMIT_MODE"}, string(c.CommitMode)))
	c.MaxLinkDepth = getEnvIntAny([]string{"SMARTLISTS_MAX_LINK_DEPTH"}, c.MaxLinkDepth)
	c.DryRun = getEnvBoolAny([]string{"SMARTLISTS_DRY_RUN", "REKORDBOX_DRY_RUN"}, c.DryRun)

	c.BackupDir = getEnvAny([]string{"SMARTLISTS_BACKUP_DIR", "REKORDBOX_BACKUP_PATH"}, c.BackupDir)
	if sources := getEnvAny([]string{"SMARTLISTS_BACKUP_SOURCES"}, ""); sources != "" {
		c.BackupSources = filepath.SplitList(sources)
	}
	c.MaxBackups = getEnvIntAny([]string{"SMARTLISTS_MAX_BACKUPS"}, c.MaxBackups)
	c.BackupBeforeChanges = getEnvBoolAny([]string{"SMARTLISTS_BACKUP_BEFORE_CHANGES"}, c.BackupBeforeChanges)

	c.S3Bucket = getEnvAny([]string{"SMARTLISTS_S3_BUCKET", "S3_BUCKET"}, c.S3Bucket)
	c.S3Prefix = getEnvAny([]string{"SMARTLISTS_S3_PREFIX"}, c.S3Prefix)
	c.S3Region = getEnvAny([]string{"SMARTLISTS_S3_REGION", "AWS_REGION"}, c.S3Region)
	c.S3Endpoint = getEnvAny([]string{"SMARTLISTS_S3_ENDPOINT", "S3_ENDPOINT"}, c.S3Endpoint)
	c.S3AccessKeyID = getEnvAny([]string{"SMARTLISTS_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, c.S3AccessKeyID)
	c.S3SecretAccessKey = getEnvAny([]string{"SMARTLISTS_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, c.S3SecretAccessKey)
	c.S3UsePathStyle = getEnvBoolAny([]string{"SMARTLISTS_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, c.S3UsePathStyle)

	c.PushGatewayURL = getEnvAny([]string{"SMARTLISTS_PUSHGATEWAY_URL"}, c.PushGatewayURL)
	c.InstanceID = getEnvAny([]string{"SMARTLISTS_INSTANCE_ID"}, c.InstanceID)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.DBBackend != DatabasePostgres && c.DBBackend != DatabaseMySQL && c.DBBackend != DatabaseSQLite {
		return fmt.Errorf("unsupported database backend %q", c.DBBackend)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("SMARTLISTS_DB_DSN must be provided")
	}
	if strings.TrimSpace(c.RootPlaylist) == "" {
		return fmt.Errorf("root playlist name must not be empty")
	}
	if c.CommitMode != CommitPerRun && c.CommitMode != CommitPerCategory {
		return fmt.Errorf("unsupported commit mode %q (want %q or %q)", c.CommitMode, CommitPerRun, CommitPerCategory)
	}
	if c.MaxLinkDepth < 1 {
		return fmt.Errorf("max link depth must be at least 1")
	}
	if c.MaxBackups < 1 {
		return fmt.Errorf("max backups must be at least 1")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.S3Bucket != "" && c.S3Region == "" {
		return fmt.Errorf("SMARTLISTS_S3_REGION is required when an S3 bucket is configured")
	}
	return nil
}

// BackupStorageEnabled reports whether backups are copied to object storage.
func (c *Config) BackupStorageEnabled() bool {
	return c != nil && c.S3Bucket != ""
}

// BackupTargets returns the paths to archive before changes. Without
// explicit sources a SQLite library backs up its own database file.
func (c *Config) BackupTargets() []string {
	if len(c.BackupSources) > 0 {
		return c.BackupSources
	}
	if c.DBBackend != DatabaseSQLite {
		return nil
	}
	path := strings.TrimPrefix(c.DBDSN, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	return []string{path}
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"REKORDBOX_COLLECTION_PATH": "filename reconciliation is not part of this tool; the key is ignored",
		"REKORDBOX_PIONEER_INSTALL": "use SMARTLISTS_BACKUP_SOURCES for the directories to back up",
		"REKORDBOX_VERBOSE":         "use SMARTLISTS_LOG_LEVEL=debug",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" || v == "on" {
				return true
			}
			if v == "false" || v == "0" || v == "no" || v == "off" {
				return false
			}
		}
	}
	return def
}
