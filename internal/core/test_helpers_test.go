package core

import (
	"context"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, time.September, 1, 8, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	base := []ServiceOption{WithClock(ClockFunc(func() time.Time { return fixedNow }))}
	return NewInMemoryService(nil, append(base, opts...)...)
}

func newSeededService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	svc := newTestService(t, opts...)
	if _, err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
