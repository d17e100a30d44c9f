package core

import (
	"errors"
	"testing"
)

func TestCleanKey(t *testing.T) {
	valid := map[string]string{
		"annexes/a1/photo.jpg":  "annexes/a1/photo.jpg",
		"announcements//x.png":  "announcements/x.png",
		"annexes/./a1/file.jpg": "annexes/a1/file.jpg",
	}
	for in, want := range valid {
		got, err := CleanKey(in)
		if err != nil || got != want {
			t.Fatalf("CleanKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "  ", "/abs", "../up", "a/../../b", `a\b`} {
		if _, err := CleanKey(in); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("CleanKey(%q) expected ErrInvalidKey, got %v", in, err)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	if err := NotFound("k"); !errors.Is(err, ErrNotFound) || err.Error() != "blob k: blobstore: not found" {
		t.Fatalf("unexpected not found error %v", err)
	}
	if err := Exists("k"); !errors.Is(err, ErrExists) {
		t.Fatalf("unexpected exists error %v", err)
	}
	if CloneMetadata(nil) != nil {
		t.Fatalf("nil metadata should stay nil")
	}
	in := map[string]string{"a": "1"}
	out := CloneMetadata(in)
	out["a"] = "2"
	if in["a"] != "1" {
		t.Fatalf("clone aliased input")
	}
}
