package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"

	"annexcore/internal/blob/core"
)

func newMockStore(t *testing.T, pageSize int) *Store {
	t.Helper()
	return newWithClient(newMockClient(newMockTransport(pageSize)), "test-bucket")
}

func TestStore_MockedBasicFlow(t *testing.T) {
	store := newMockStore(t, 0)
	ctx := context.Background()
	info, err := store.Put(ctx, "annexes/a1/front.txt", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "text/plain", Metadata: map[string]string{"annex": "a1"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "annexes/a1/front.txt" || info.ContentType != "text/plain" || info.ETag != "etag123" {
		t.Fatalf("unexpected info %#v", info)
	}
	if info.Metadata["annex"] != "a1" {
		t.Fatalf("expected metadata round trip, got %+v", info.Metadata)
	}
	if _, err := store.Put(ctx, "annexes/a1/front.txt", bytes.NewReader([]byte("ignored")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := store.Get(ctx, "annexes/a1/front.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Contains(data, []byte("hello")) {
		t.Fatalf("get mismatch: %q", string(data))
	}
	list, err := store.List(ctx, "annexes/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if url, err := store.PresignURL(ctx, "annexes/a1/front.txt", core.SignedURLOptions{Expiry: 30 * time.Second}); err != nil || url == "" {
		t.Fatalf("presign: %v %s", err, url)
	}
	if ok, err := store.Delete(ctx, "annexes/a1/front.txt"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "annexes/a1/front.txt"); err != nil || ok {
		t.Fatalf("second delete should report false: %v %v", ok, err)
	}
}

func TestStore_NotFoundMapping(t *testing.T) {
	store := newMockStore(t, 0)
	ctx := context.Background()
	if _, err := store.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected head ErrNotFound, got %v", err)
	}
	if _, _, err := store.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected get ErrNotFound, got %v", err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected presign unsupported error")
	}
	if _, err := store.Put(ctx, "../escape", bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestStore_ListPaginates(t *testing.T) {
	store := newMockStore(t, 2)
	ctx := context.Background()
	for _, key := range []string{"k3", "k1", "k2", "other"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("body")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "k")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Key != "k1" || list[2].Key != "k3" {
		t.Fatalf("expected three sorted items across pages: %+v", list)
	}
	if list, err := store.List(ctx, "no-such-prefix/"); err != nil || len(list) != 0 {
		t.Fatalf("expected empty list: %v %+v", err, list)
	}
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), Config{Bucket: "bkt", Endpoint: "https://mock.s3.local", PathStyle: true, AccessKeyID: "AKIA", SecretAccessKey: "SECRET"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Driver() != core.DriverS3 || s.Bucket() != "bkt" {
		t.Fatalf("unexpected store")
	}
	if _, err := New(context.Background(), Config{Bucket: " "}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestFromHeadNilFields(t *testing.T) {
	store := newMockStore(t, 0)
	info := store.fromHead("k", 10, nil, aws.String(`"etagval"`), map[string]string{"x": "y"}, nil)
	if info.ETag != "etagval" || info.ContentType != "" || info.Key != "k" || info.Size != 10 || info.LastModified.IsZero() {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestDecodeChunked(t *testing.T) {
	if _, ok := decodeChunked([]byte("not-chunked")); ok {
		t.Fatalf("expected failure for plain body")
	}
	if _, ok := decodeChunked([]byte("5\r\nabc\r\n0\r\n")); ok {
		t.Fatalf("size mismatch should fail")
	}
	if b, ok := decodeChunked([]byte("5\r\nhello\r\n0\r\n")); !ok || string(b) != "hello" {
		t.Fatalf("expected decode hello")
	}
}

func TestMockTransportUnsupportedMethod(t *testing.T) {
	rt := newMockTransport(0)
	req, _ := http.NewRequest(http.MethodPatch, "https://mock.s3.local/bucket/key", nil)
	resp, _ := rt.RoundTrip(req)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.StatusCode)
	}
}

func TestMockHeadersAreCanonical(t *testing.T) {
	h := newMockTransport(0).objectHeader(mockObj{body: []byte("hi"), contentType: "text/plain"})
	if got := h.Get("ETag"); got != `"etag123"` {
		t.Fatalf("etag must be readable through Header.Get, got %q", got)
	}
	if _, ok := h["ETag"]; ok {
		t.Fatalf("header keys must be canonical")
	}
	if h.Get("Content-Length") != "2" {
		t.Fatalf("unexpected content length %q", h.Get("Content-Length"))
	}
}
