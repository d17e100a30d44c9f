package core

import (
	"context"
	"errors"
	"testing"

	"annexcore/pkg/domain"
)

func TestNorthHilltownScenario(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)

	north, _, err := svc.AddProvince(ctx, "North")
	if err != nil {
		t.Fatalf("add province: %v", err)
	}
	if north.ID != "p10" {
		t.Fatalf("expected p10 after nine seeded provinces, got %s", north.ID)
	}
	hilltown, _, err := svc.AddDistrict(ctx, "Hilltown", "p10")
	if err != nil {
		t.Fatalf("add district: %v", err)
	}
	campus, _, err := svc.AddUniversity(ctx, "Hilltown Campus", hilltown.ID)
	if err != nil {
		t.Fatalf("add university: %v", err)
	}

	_, _, err = svc.AddDistrict(ctx, "Bad", "zzz")
	var verr domain.ValidationError
	if !errors.As(err, &verr) || !verr.HasField("province_id") {
		t.Fatalf("expected province_id validation error, got %v", err)
	}
	if len(svc.ListDistricts()) != 16 {
		t.Fatalf("failed add must not mutate, got %d districts", len(svc.ListDistricts()))
	}

	if _, err := svc.DeleteProvince(ctx, "p10"); err != nil {
		t.Fatalf("delete province: %v", err)
	}
	if _, err := svc.GetDistrict(hilltown.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected cascaded district removal, got %v", err)
	}
	if _, err := svc.GetUniversity(campus.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected cascaded university removal, got %v", err)
	}
	if got := svc.ResolveProvinceName("p10"); got != "N/A" {
		t.Fatalf("expected N/A, got %q", got)
	}
}

func TestAddReferenceValidation(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)
	cases := []struct {
		name  string
		run   func() error
		field string
	}{
		{"blank province", func() error { _, _, err := svc.AddProvince(ctx, "   "); return err }, "name"},
		{"blank district", func() error { _, _, err := svc.AddDistrict(ctx, "", "p1"); return err }, "name"},
		{"district without province", func() error { _, _, err := svc.AddDistrict(ctx, "Loose", ""); return err }, "province_id"},
		{"unknown district", func() error { _, _, err := svc.AddUniversity(ctx, "Ghost U", "d99"); return err }, "district_id"},
		{"move district to unknown province", func() error { _, _, err := svc.UpdateDistrict(ctx, "d1", "Colombo", "p99"); return err }, "province_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			var verr domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !verr.HasField(tc.field) {
				t.Fatalf("expected field %s in %+v", tc.field, verr.Fields)
			}
		})
	}
	if got := svc.ResolveDistrictName("d1"); got != "Colombo" {
		t.Fatalf("rejected update must not mutate, got %q", got)
	}
}

func TestUpdateAndDeleteMissingReferences(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, _, err := svc.UpdateProvince(ctx, "p1", "Western"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, _, err := svc.UpdateUniversity(ctx, "u1", "X", "d1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.DeleteUniversity(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.GetProvince("p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteDistrictCascadesAndUnlinksAnnexes(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)

	if _, err := svc.DeleteDistrict(ctx, "d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, u := range svc.ListUniversities() {
		if u.DistrictID == "d1" {
			t.Fatalf("university %s survived its district", u.ID)
		}
	}
	if got := len(svc.ListUniversities()); got != 10 {
		t.Fatalf("expected 3 of 13 universities removed, got %d left", got)
	}
	a2, err := svc.GetAnnex("a2")
	if err != nil {
		t.Fatalf("annex must survive university removal: %v", err)
	}
	if a2.UniversityID != nil {
		t.Fatalf("expected cleared university link, got %v", *a2.UniversityID)
	}
	if got := svc.ResolveUniversityName("u1"); got != domain.NameUnavailable {
		t.Fatalf("expected N/A, got %q", got)
	}
}

func TestUpdateReferences(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)
	p, _, err := svc.UpdateProvince(ctx, "p8", "  Uva Province ")
	if err != nil || p.Name != "Uva Province" {
		t.Fatalf("rename province: %+v %v", p, err)
	}
	d, _, err := svc.UpdateDistrict(ctx, "d5", "Matale", "p1")
	if err != nil || d.ProvinceID != "p1" {
		t.Fatalf("move district: %+v %v", d, err)
	}
	u, _, err := svc.UpdateUniversity(ctx, "u7", "NIMASA", "d8")
	if err != nil || u.DistrictID != "d8" || u.Name != "NIMASA" {
		t.Fatalf("move university: %+v %v", u, err)
	}
	if got := svc.ResolveDistrictName(u.DistrictID); got != "Matara" {
		t.Fatalf("expected Matara, got %s", got)
	}
}

func TestSaveReferenceDispatches(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService(t)

	rec, _, err := svc.SaveReference(ctx, "", ReferenceInput{Kind: domain.KindDistrict, Name: " Hilltown ", ParentID: "p2"})
	if err != nil {
		t.Fatalf("add district: %v", err)
	}
	if rec.ID != "d16" || rec.Name != "Hilltown" || rec.ParentID != "p2" {
		t.Fatalf("unexpected record %+v", rec)
	}
	rec, _, err = svc.SaveReference(ctx, rec.ID, ReferenceInput{Kind: domain.KindDistrict, Name: "Hill Town", ParentID: "p3"})
	if err != nil || rec.ParentID != "p3" || rec.Name != "Hill Town" {
		t.Fatalf("update district: %+v %v", rec, err)
	}
	rec, _, err = svc.SaveReference(ctx, "", ReferenceInput{Kind: domain.KindProvince, Name: "North"})
	if err != nil || rec.ID != "p10" || rec.ParentID != "" {
		t.Fatalf("add province: %+v %v", rec, err)
	}
	rec, _, err = svc.SaveReference(ctx, "", ReferenceInput{Kind: domain.KindUniversity, Name: "Hill Campus", ParentID: "d16"})
	if err != nil || rec.ID != "u14" {
		t.Fatalf("add university: %+v %v", rec, err)
	}

	_, _, err = svc.SaveReference(ctx, "", ReferenceInput{Kind: domain.KindUniversity, Name: "Orphan"})
	var verr domain.ValidationError
	if !errors.As(err, &verr) || !verr.HasField("district_id") {
		t.Fatalf("expected district_id error, got %v", err)
	}
	if _, _, err := svc.SaveReference(ctx, "", ReferenceInput{Kind: "campus", Name: "X"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown kind, got %v", err)
	}
	if _, _, err := svc.SaveReference(ctx, "d404", ReferenceInput{Kind: domain.KindDistrict, Name: "X", ParentID: "p1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestResolveNames(t *testing.T) {
	svc := newSeededService(t)
	cases := []struct{ got, want string }{
		{svc.ResolveProvinceName("p2"), "Central"},
		{svc.ResolveDistrictName("d4"), "Kandy"},
		{svc.ResolveUniversityName("u2"), "University of Peradeniya"},
		{svc.ResolveProvinceName(""), "N/A"},
		{svc.ResolveDistrictName("d999"), "N/A"},
		{svc.ResolveUniversityName("nope"), "N/A"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, tc.got)
		}
	}
}
