package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"flightlog-service/internal/domain/entity"
)

// snapshotVersion is the current schema version of the local blob.
// Older versions are migrated forward on load.
const snapshotVersion = 1

const snapshotFileName = "flights.json"

type snapshotFile struct {
	Version int                   `json:"version"`
	Flights []entity.FlightRecord `json:"flights"`
	Filters entity.FilterSpec     `json:"filters"`
}

// SnapshotStore persists the whole local collection as a single versioned
// JSON blob, rewritten atomically on every mutation.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a snapshot store rooted at dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{path: filepath.Join(dir, snapshotFileName)}
}

// Path returns the backing file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Load reads the persisted snapshot. A missing file yields the initial
// empty state. A corrupt file also yields the initial state, together
// with a StorageError so the caller can warn without dying.
func (s *SnapshotStore) Load() ([]entity.FlightRecord, entity.FilterSpec, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, entity.FilterSpec{}, nil
		}
		return nil, entity.FilterSpec{}, &entity.StorageError{Op: "read", Err: err}
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, entity.FilterSpec{}, &entity.StorageError{Op: "decode", Err: err}
	}

	if err := migrate(&snap); err != nil {
		return nil, entity.FilterSpec{}, &entity.StorageError{Op: "migrate", Err: err}
	}

	return snap.Flights, snap.Filters, nil
}

// Save writes the snapshot atomically: temp file in the same directory,
// then rename over the old blob.
func (s *SnapshotStore) Save(flights []entity.FlightRecord, filters entity.FilterSpec) error {
	snap := snapshotFile{
		Version: snapshotVersion,
		Flights: flights,
		Filters: filters,
	}
	if snap.Flights == nil {
		snap.Flights = []entity.FlightRecord{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &entity.StorageError{Op: "encode", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &entity.StorageError{Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, snapshotFileName+".tmp-*")
	if err != nil {
		return &entity.StorageError{Op: "create", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &entity.StorageError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &entity.StorageError{Op: "close", Err: err}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &entity.StorageError{Op: "rename", Err: err}
	}

	return nil
}

// migrate upgrades older persisted shapes in place. Version 0 blobs
// (written before versioning existed) carry the same field layout, so the
// upgrade is a stamp; unknown future versions are refused.
func migrate(snap *snapshotFile) error {
	switch {
	case snap.Version == snapshotVersion:
		return nil
	case snap.Version == 0:
		snap.Version = snapshotVersion
		return nil
	case snap.Version > snapshotVersion:
		return fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, snapshotVersion)
	default:
		return nil
	}
}
