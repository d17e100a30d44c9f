package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"annexcore/testutil"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != StorageSQLite || cfg.Storage.SQLitePath != "annexcore.db" {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
	if cfg.Blob.Driver != "fs" || cfg.Blob.FSRoot != "./blobdata" || cfg.Blob.S3.Region != "us-east-1" {
		t.Fatalf("unexpected blob defaults %+v", cfg.Blob)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" || cfg.Metrics.Namespace != "annexcore" {
		t.Fatalf("unexpected ambient defaults %+v %+v", cfg.Log, cfg.Metrics)
	}
	if Default() != cfg {
		t.Fatalf("Default should match Load without overrides")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ANNEXCORE_STORAGE_DRIVER", "Postgres")
	t.Setenv("ANNEXCORE_STORAGE_POSTGRES_DSN", "postgres://db/annex")
	t.Setenv("ANNEXCORE_BLOB_DRIVER", "s3")
	t.Setenv("ANNEXCORE_BLOB_S3_BUCKET", "annex-photos")
	t.Setenv("ANNEXCORE_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("ANNEXCORE_LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != StoragePostgres || cfg.Storage.PostgresDSN != "postgres://db/annex" {
		t.Fatalf("storage env not applied: %+v", cfg.Storage)
	}
	if cfg.Blob.S3.Bucket != "annex-photos" || !cfg.Blob.S3.PathStyle {
		t.Fatalf("blob env not applied: %+v", cfg.Blob.S3)
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v %v", level, err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	body := "storage:\n  driver: memory\nlog:\n  format: json\nmetrics:\n  namespace: admin\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != StorageMemory || cfg.Log.Format != "json" || cfg.Metrics.Namespace != "admin" {
		t.Fatalf("file values not applied: %+v", cfg)
	}

	t.Setenv("ANNEXCORE_METRICS_NAMESPACE", "fromenv")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Metrics.Namespace != "fromenv" {
		t.Fatalf("env must win over file, got %s", cfg.Metrics.Namespace)
	}
}

func TestLoadDiscoversWorkingDirectoryFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "annexcore.yaml"), []byte("blob:\n  driver: memory\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Blob.Driver != "memory" {
		t.Fatalf("expected discovered file, got %+v", cfg.Blob)
	}
}

func TestLoadErrors(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing explicit file error")
	}

	t.Setenv("ANNEXCORE_STORAGE_DRIVER", "mongo")
	t.Setenv("ANNEXCORE_BLOB_DRIVER", "s3")
	t.Setenv("ANNEXCORE_LOG_LEVEL", "loud")
	t.Setenv("ANNEXCORE_LOG_FORMAT", "xml")
	_, err := Load("")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"storage.driver", "blob.s3.bucket", "log.level", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ANNEXCORE_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ANNEXCORE_TEST_DOTENV", "")
	if err := os.Unsetenv("ANNEXCORE_TEST_DOTENV"); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if err := LoadDotEnv(filepath.Join(dir, "absent.env"), path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("ANNEXCORE_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("expected dotenv value, got %q", got)
	}
}

func TestConfigDoesNotOpenBackends(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.DriverImportForbidden, "config only describes backends")
}
