package memory

import (
	"context"
	"encoding/json"
	"testing"

	"annexcore/pkg/domain"
)

func TestMigrateSnapshotRepairsDanglingReferences(t *testing.T) {
	gone := "u9"
	kept := "u1"
	snapshot := Snapshot{
		Provinces: []Province{{Base: domain.Base{ID: "p1"}, Name: "Western"}, {Base: domain.Base{ID: "p1"}, Name: "Duplicate"}, {Name: "No id"}},
		Districts: []District{
			{Base: domain.Base{ID: "d1"}, Name: "Colombo", ProvinceID: "p1"},
			{Base: domain.Base{ID: "d2"}, Name: "Orphan", ProvinceID: "p7"},
		},
		Universities: []University{
			{Base: domain.Base{ID: "u1"}, Name: "Colombo", DistrictID: "d1"},
			{Base: domain.Base{ID: "u2"}, Name: "Orphan child", DistrictID: "d2"},
		},
		Annexes: []Annex{
			{Base: domain.Base{ID: "a1"}, Title: "Linked", UniversityID: &kept},
			{Base: domain.Base{ID: "a2"}, Title: "Dangling", UniversityID: &gone},
		},
		Users: []User{{Base: domain.Base{ID: "usr1"}, Name: "No status"}},
	}

	migrated := migrateSnapshot(snapshot)

	if len(migrated.Provinces) != 1 || migrated.Provinces[0].Name != "Western" {
		t.Fatalf("expected first p1 only, got %+v", migrated.Provinces)
	}
	if len(migrated.Districts) != 1 || migrated.Districts[0].ID != "d1" {
		t.Fatalf("expected orphan district dropped, got %+v", migrated.Districts)
	}
	if len(migrated.Universities) != 1 || migrated.Universities[0].ID != "u1" {
		t.Fatalf("expected orphan university dropped, got %+v", migrated.Universities)
	}
	if migrated.Annexes[0].UniversityID == nil || migrated.Annexes[1].UniversityID != nil {
		t.Fatalf("unexpected annex links %+v", migrated.Annexes)
	}
	if migrated.Annexes[1].Status != domain.AnnexStatusPending {
		t.Fatalf("expected default annex status, got %q", migrated.Annexes[1].Status)
	}
	if migrated.Users[0].Status != domain.UserStatusActive {
		t.Fatalf("expected default user status, got %q", migrated.Users[0].Status)
	}
	if migrated.Announcements == nil {
		t.Fatalf("expected non-nil announcements slice")
	}
}

func TestImportStateRestoresSequences(t *testing.T) {
	store := NewStore(nil)
	store.ImportState(Snapshot{
		Provinces: []Province{{Base: domain.Base{ID: "p2"}, Name: "Central"}},
		Sequences: map[string]int{"province": 5, "bogus": 100},
	})
	var created domain.Province
	mustRun(t, store, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateProvince(domain.Province{Name: "Uva"})
		return err
	})
	if created.ID != "p6" {
		t.Fatalf("expected p6 after imported sequence 5, got %s", created.ID)
	}
	if got := store.ExportState().Sequences["province"]; got != 6 {
		t.Fatalf("expected exported sequence 6, got %d", got)
	}
}

func TestSnapshotBucketsRoundTrip(t *testing.T) {
	store := NewStore(nil)
	seedHierarchy(t, store)
	buckets, err := store.ExportState().EncodeBuckets()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buckets) != len(SnapshotBuckets) {
		t.Fatalf("expected %d buckets, got %d", len(SnapshotBuckets), len(buckets))
	}
	var provinces []Province
	if err := json.Unmarshal(buckets["provinces"], &provinces); err != nil {
		t.Fatalf("provinces bucket must be a JSON array: %v", err)
	}

	var decoded Snapshot
	for name, payload := range buckets {
		if err := decoded.DecodeBucket(name, payload); err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
	}
	if err := decoded.DecodeBucket("unknown", []byte("{")); err != nil {
		t.Fatalf("unknown buckets should be ignored: %v", err)
	}
	if err := decoded.DecodeBucket("districts", []byte("{")); err == nil {
		t.Fatalf("expected decode error for malformed payload")
	}

	restored := NewStore(nil)
	restored.ImportState(decoded)
	if len(restored.ListUniversities()) != 3 || restored.ListDistricts()[2].ID != "d3" {
		t.Fatalf("unexpected restored state")
	}
	_ = restored.View(context.Background(), func(view domain.TransactionView) error {
		if d, ok := view.FindDistrict("d2"); !ok || d.ProvinceID != "p1" {
			t.Fatalf("expected d2 under p1")
		}
		return nil
	})
}
