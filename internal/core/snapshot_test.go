package core

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"annexcore/internal/config"
)

func TestSeedLoadsSampleData(t *testing.T) {
	svc := newSeededService(t)
	if len(svc.ListProvinces()) != 9 || len(svc.ListDistricts()) != 15 || len(svc.ListUniversities()) != 13 {
		t.Fatalf("unexpected hierarchy sizes")
	}
	if len(svc.ListUsers()) != 6 || len(svc.ListAnnexes()) != 4 || len(svc.ListAnnouncements()) != 5 {
		t.Fatalf("unexpected sample sizes")
	}
	for _, d := range svc.ListDistricts() {
		if svc.ResolveProvinceName(d.ProvinceID) == "N/A" {
			t.Fatalf("district %s has dangling province", d.ID)
		}
	}
	for _, u := range svc.ListUniversities() {
		if svc.ResolveDistrictName(u.DistrictID) == "N/A" {
			t.Fatalf("university %s has dangling district", u.ID)
		}
	}
	if _, err := svc.Seed(context.Background()); !errors.Is(err, ErrStoreNotEmpty) {
		t.Fatalf("second seed must fail, got %v", err)
	}
}

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newSeededService(t)
	if _, err := src.DeleteProvince(ctx, "p9"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap, err := src.ExportSnapshot()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"provinces": [`) {
		t.Fatalf("expected per-collection arrays, got %s", buf.String()[:80])
	}

	decoded, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dst := newTestService(t)
	if err := dst.ImportSnapshot(ctx, decoded); err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(dst.ListProvinces()) != 8 || len(dst.ListUniversities()) != 12 {
		t.Fatalf("unexpected imported sizes")
	}
	p, _, err := dst.AddProvince(ctx, "Sabaragamuwa")
	if err != nil {
		t.Fatalf("add after import: %v", err)
	}
	if p.ID != "p10" {
		t.Fatalf("sequences must survive the round trip, got %s", p.ID)
	}

	if _, err := DecodeSnapshot(strings.NewReader("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestImportSnapshotPersistsThroughSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "annex.db")
	store, err := OpenPersistentStore(ctx, config.StorageConfig{Driver: config.StorageSQLite, SQLitePath: path}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	svc := NewService(store)
	if err := svc.ImportSnapshot(ctx, SampleData()); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenPersistentStore(ctx, config.StorageConfig{Driver: config.StorageSQLite, SQLitePath: path}, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again := NewService(reopened)
	defer func() { _ = again.Close() }()
	if len(again.ListUniversities()) != 13 || again.ResolveUniversityName("u9") != "University of Jaffna" {
		t.Fatalf("imported state was not persisted")
	}
}

type listOnlyStore struct {
	PersistentStore
}

func TestSnapshotUnsupported(t *testing.T) {
	svc := NewService(listOnlyStore{PersistentStore: NewMemoryStore(nil)})
	if _, err := svc.ExportSnapshot(); !errors.Is(err, ErrSnapshotUnsupported) {
		t.Fatalf("expected unsupported export, got %v", err)
	}
	if err := svc.ImportSnapshot(context.Background(), Snapshot{}); !errors.Is(err, ErrSnapshotUnsupported) {
		t.Fatalf("expected unsupported import, got %v", err)
	}
}
