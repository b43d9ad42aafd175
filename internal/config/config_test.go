package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Fatalf("unexpected backend: %q", cfg.DBBackend)
	}
	if cfg.CommitMode != CommitPerRun {
		t.Fatalf("unexpected commit mode: %q", cfg.CommitMode)
	}
	if cfg.MaxLinkDepth != 16 {
		t.Fatalf("unexpected max link depth: %d", cfg.MaxLinkDepth)
	}
	if !cfg.BackupBeforeChanges {
		t.Fatal("expected backups before changes by default")
	}
}

func TestLoadReadsEnvKeys(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SMARTLISTS_DB_BACKEND", "postgres")
	t.Setenv("SMARTLISTS_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("SMARTLISTS_ROOT_PLAYLIST", "DaneDubz")
	t.Setenv("SMARTLISTS_COMMIT_MODE", "category")
	t.Setenv("REKORDBOX_DRY_RUN", "yes")
	t.Setenv("SMARTLISTS_BACKUP_SOURCES", "a"+string(os.PathListSeparator)+"b")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabasePostgres || cfg.RootPlaylist != "DaneDubz" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.CommitMode != CommitPerCategory {
		t.Fatalf("unexpected commit mode: %q", cfg.CommitMode)
	}
	if !cfg.DryRun {
		t.Fatal("expected legacy REKORDBOX_DRY_RUN to enable dry run")
	}
	if len(cfg.BackupSources) != 2 {
		t.Fatalf("unexpected backup sources: %v", cfg.BackupSources)
	}
}

func TestLoadSettingsFileBelowEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	settings := filepath.Join(dir, "smartlists.yaml")
	body := "root_playlist: From File\nmax_backups: 3\nplaylist_data_path: /srv/playlists\n"
	if err := os.WriteFile(settings, []byte(body), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	t.Setenv("SMARTLISTS_MAX_BACKUPS", "5")

	cfg, err := Load(settings)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RootPlaylist != "From File" || cfg.PlaylistDataPath != "/srv/playlists" {
		t.Fatalf("settings file not applied: %+v", cfg)
	}
	if cfg.MaxBackups != 5 {
		t.Fatalf("env should win over settings file, got %d", cfg.MaxBackups)
	}
	if cfg.SettingsFile != settings {
		t.Fatalf("settings file not recorded: %q", cfg.SettingsFile)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SMARTLISTS_ROOT_PLAYLIST=From Dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// godotenv sets the variable for the process; make sure it is cleared afterwards.
	t.Setenv("SMARTLISTS_ROOT_PLAYLIST", "")
	os.Unsetenv("SMARTLISTS_ROOT_PLAYLIST")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RootPlaylist != "From Dotenv" {
		t.Fatalf("unexpected root playlist %q", cfg.RootPlaylist)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"backend", "SMARTLISTS_DB_BACKEND", "oracle"},
		{"commit mode", "SMARTLISTS_COMMIT_MODE", "never"},
		{"link depth", "SMARTLISTS_MAX_LINK_DEPTH", "0"},
		{"log level", "SMARTLISTS_LOG_LEVEL", "chatty"},
		{"max backups", "SMARTLISTS_MAX_BACKUPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.val)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected %s=%s to be rejected", tt.key, tt.val)
			}
		})
	}
}

func TestLoadReportsLegacyEnvWarnings(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REKORDBOX_VERBOSE", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.LegacyEnvWarnings) == 0 {
		t.Fatal("expected legacy env warnings")
	}
}

func TestBackupTargets(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"explicit sources", Config{DBBackend: DatabaseSQLite, DBDSN: "lib.db", BackupSources: []string{"/a", "/b"}}, []string{"/a", "/b"}},
		{"sqlite file", Config{DBBackend: DatabaseSQLite, DBDSN: "file:lib.db?_busy_timeout=5000"}, []string{"lib.db"}},
		{"sqlite memory", Config{DBBackend: DatabaseSQLite, DBDSN: ":memory:"}, nil},
		{"postgres", Config{DBBackend: DatabasePostgres, DBDSN: "host=db"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.BackupTargets()
			if len(got) != len(tt.want) {
				t.Fatalf("BackupTargets() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("BackupTargets() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
