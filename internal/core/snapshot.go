package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrSnapshotUnsupported is returned when the configured store cannot export or import state.
var ErrSnapshotUnsupported = errors.New("store does not support snapshots")

type stateExporter interface {
	ExportState() Snapshot
}

type stateImporter interface {
	ImportState(Snapshot)
}

type snapshotImporter interface {
	ImportSnapshot(ctx context.Context, snapshot Snapshot) error
}

// ExportSnapshot returns a point-in-time copy of every collection.
func (s *Service) ExportSnapshot() (Snapshot, error) {
	exporter, ok := s.store.(stateExporter)
	if !ok {
		return Snapshot{}, ErrSnapshotUnsupported
	}
	return exporter.ExportState(), nil
}

// ImportSnapshot replaces the store contents with snapshot. Dangling
// references in the snapshot are repaired on the way in. Durable stores
// persist the imported state before returning.
func (s *Service) ImportSnapshot(ctx context.Context, snapshot Snapshot) error {
	return s.observe(ctx, "import_snapshot", func(ctx context.Context) error {
		switch store := s.store.(type) {
		case snapshotImporter:
			return store.ImportSnapshot(ctx, snapshot)
		case stateImporter:
			store.ImportState(snapshot)
			return nil
		default:
			return ErrSnapshotUnsupported
		}
	}, nil)
}

// EncodeSnapshot writes snapshot as indented JSON.
func EncodeSnapshot(w io.Writer, snapshot Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}
