package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestNewMockS3ForTestsBasic(t *testing.T) {
	s := NewMockS3ForTests()
	if s.Driver() != DriverS3 {
		t.Fatalf("expected DriverS3")
	}
	ctx := context.Background()
	if _, err := s.Put(ctx, "a.txt", bytes.NewReader([]byte("hello")), PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, rc, err := s.Get(ctx, "a.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_, _ = io.ReadAll(rc)
	_ = rc.Close()
	if list, err := s.List(ctx, ""); err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}
	if ok, err := s.Delete(ctx, "a.txt"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := s.Head(ctx, "a.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
