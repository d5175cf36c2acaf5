package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Inventory.Directories) != 0 {
		t.Errorf("expected directories to be left to the pipeline, got %v", cfg.Sources.Inventory.Directories)
	}
	if cfg.Sources.WordPress.Kind != ContentREST {
		t.Errorf("expected wordpress kind %q, got %q", ContentREST, cfg.Sources.WordPress.Kind)
	}
	if cfg.Sink.Kind != SinkSQLite {
		t.Errorf("expected sink %q, got %q", SinkSQLite, cfg.Sink.Kind)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
sink:
  kind: automem
  automem_url: http://memory:9000
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Sink.Kind != SinkAutoMem {
		t.Errorf("expected sink 'automem', got %q", cfg.Sink.Kind)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Sources.HelpScout.InboxQuery != "support" {
		t.Errorf("expected default inbox query, got %q", cfg.Sources.HelpScout.InboxQuery)
	}
	// Unset locations stay empty so the client and pipeline defaults apply.
	if cfg.Sources.HelpScout.BaseURL != "" {
		t.Errorf("expected empty helpscout url, got %q", cfg.Sources.HelpScout.BaseURL)
	}
	if len(cfg.Sources.Inventory.Directories) != 0 {
		t.Errorf("expected no configured directories, got %v", cfg.Sources.Inventory.Directories)
	}
}

func TestParseRejectsUnknownKinds(t *testing.T) {
	for _, data := range []string{
		"sink:\n  kind: redis\n",
		"sources:\n  wordpress:\n    kind: graphql\n",
	} {
		if _, err := parse([]byte(data)); err == nil {
			t.Errorf("expected error for %q", data)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Schedule.Cron == "" {
		t.Error("expected cron schedule to be populated from file")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	t.Setenv("BIZPULSE_DATA_DIR", "/tmp/bizpulse-data")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.GetDataDir() != "/tmp/bizpulse-data" {
		t.Errorf("expected env data dir, got %q", cfg.GetDataDir())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(".env", []byte("BIZPULSE_TEST_VALUE=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("BIZPULSE_TEST_VALUE", "")

	loaded := LoadEnv(nil)
	if len(loaded) != 1 || loaded[0] != ".env" {
		t.Errorf("expected .env to be loaded, got %v", loaded)
	}
	if got := os.Getenv("BIZPULSE_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
	if cfg.DBPath() != filepath.Join("/custom/path", "bizpulse.db") {
		t.Errorf("unexpected db path %q", cfg.DBPath())
	}
}
