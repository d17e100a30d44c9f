package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"annexcore/internal/infra/persistence/memory"
	"annexcore/pkg/domain"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("unexpected path %s", store.Path())
	}
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		p, err := tx.CreateProvince(domain.Province{Name: "Western"})
		if err != nil {
			return err
		}
		_, err = tx.CreateDistrict(domain.District{Name: "Colombo", ProvinceID: p.ID})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if got := len(reloaded.ListDistricts()); got != 1 {
		t.Fatalf("expected 1 district, got %d", got)
	}
	var next domain.Province
	if _, err := reloaded.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		next, err = tx.CreateProvince(domain.Province{Name: "Central"})
		return err
	}); err != nil {
		t.Fatalf("create after reload: %v", err)
	}
	if next.ID != "p2" {
		t.Fatalf("expected sequence to survive reload, got %s", next.ID)
	}
}

func TestSQLiteStoreFailedTransactionDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateDistrict(domain.District{Name: "Bad", ProvinceID: "zzz"})
		return err
	}); err == nil {
		t.Fatalf("expected validation error")
	}
	var rows int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected no persisted buckets, got %d", rows)
	}
}

func TestSQLiteStoreWriteFailureDiscardsTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	ctx := context.Background()
	if _, err := store.DB().Exec(`DROP TABLE state`); err != nil {
		t.Fatalf("drop state: %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateProvince(domain.Province{Name: "Western"})
		return err
	})
	if err == nil || !strings.Contains(err.Error(), "persist sqlite snapshot") {
		t.Fatalf("expected persist error, got %v", err)
	}
	if got := store.ListProvinces(); len(got) != 0 {
		t.Fatalf("unpersisted province visible: %v", got)
	}
	err = store.ImportSnapshot(ctx, memory.Snapshot{Provinces: []domain.Province{{Base: domain.Base{ID: "p1"}, Name: "Uva"}}})
	if err == nil {
		t.Fatalf("expected import to fail without a state table")
	}
	if _, ok := store.GetProvince("p1"); ok {
		t.Fatalf("failed import replaced memory state")
	}
	_ = store.Close()
}

func TestSQLiteStoreImportSnapshotWritesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	snapshot := memory.Snapshot{
		Provinces: []domain.Province{{Base: domain.Base{ID: "p4"}, Name: "Northern"}},
		Districts: []domain.District{{Base: domain.Base{ID: "d1"}, Name: "Jaffna", ProvinceID: "p4"}},
	}
	if err := store.ImportSnapshot(context.Background(), snapshot); err != nil {
		t.Fatalf("import: %v", err)
	}
	_ = store.Close()

	reloaded, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if _, ok := reloaded.GetDistrict("d1"); !ok {
		t.Fatalf("expected imported district after reload")
	}
}

func TestSQLiteStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, err := store.DB().Exec(`INSERT INTO state(bucket,payload) VALUES('provinces', '{not json')`); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}
	_ = store.Close()
	if _, err := NewStore(path, nil); err == nil {
		t.Fatalf("expected decode error for corrupt bucket")
	}
}
