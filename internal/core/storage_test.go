package core

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"annexcore/internal/blob"
	"annexcore/internal/config"
	"annexcore/internal/infra/persistence/memory"
	"annexcore/internal/infra/persistence/sqlite"
)

func TestOpenPersistentStoreDrivers(t *testing.T) {
	ctx := context.Background()
	store, err := OpenPersistentStore(ctx, config.StorageConfig{Driver: config.StorageMemory}, nil)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	path := filepath.Join(t.TempDir(), "default.db")
	store, err = OpenPersistentStore(ctx, config.StorageConfig{SQLitePath: path}, nil)
	if err != nil {
		t.Fatalf("sqlite default: %v", err)
	}
	sq, ok := store.(*sqlite.Store)
	if !ok || sq.Path() != path {
		t.Fatalf("expected sqlite store at %s, got %T", path, store)
	}
	_ = sq.Close()

	if _, err := OpenPersistentStore(ctx, config.StorageConfig{Driver: "mongo"}, nil); err == nil || !strings.Contains(err.Error(), "mongo") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestOpenServiceFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageMemory
	cfg.Blob.Driver = string(blob.DriverMemory)
	metrics := &captureMetricsRecorder{}

	svc, err := OpenService(ctx, cfg, WithMetricsRecorder(metrics))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = svc.Close() }()
	if svc.Blobs() == nil || svc.Blobs().Driver() != blob.DriverMemory {
		t.Fatalf("expected memory blob store")
	}
	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !metrics.has("seed", true) {
		t.Fatalf("caller options must apply")
	}
	mem, ok := svc.Store().(*memory.Store)
	if !ok || len(mem.RulesEngine().Rules()) != 2 {
		t.Fatalf("expected memory store with the default rules, got %T", svc.Store())
	}
}

func TestOpenServiceErrors(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageMemory

	cfg.Blob.Driver = "ftp"
	if _, err := OpenService(ctx, cfg); err == nil || !strings.Contains(err.Error(), "open blob store") {
		t.Fatalf("expected blob error, got %v", err)
	}
	cfg.Blob.Driver = string(blob.DriverMemory)
	cfg.Log.Level = "loud"
	if _, err := OpenService(ctx, cfg); err == nil {
		t.Fatalf("expected log level error")
	}
	cfg.Log.Level = "info"
	cfg.Storage.Driver = "mongo"
	if _, err := OpenService(ctx, cfg); err == nil || !strings.Contains(err.Error(), "open storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewSlogLogger(&buf, config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "operation", "seed")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"operation":"seed"`) || !strings.Contains(out, `"component":"annexcore"`) {
		t.Fatalf("unexpected output %s", out)
	}

	buf.Reset()
	text, err := NewSlogLogger(&buf, config.LogConfig{Level: "debug", Format: "text"})
	if err != nil {
		t.Fatalf("text logger: %v", err)
	}
	text.Debug("details", "id", "p1")
	if !strings.Contains(buf.String(), "id=p1") {
		t.Fatalf("expected text output, got %s", buf.String())
	}
	if _, err := NewSlogLogger(&buf, config.LogConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected level error")
	}
	NewSlogAdapter(nil).Error("adapter falls back to the default logger")
}
