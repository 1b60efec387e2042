package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

// SnapshotPersister is the durable mirror of the local collection.
// Implemented by persistence.SnapshotStore.
type SnapshotPersister interface {
	Load() ([]entity.FlightRecord, entity.FilterSpec, error)
	Save(flights []entity.FlightRecord, filters entity.FilterSpec) error
}

// LocalStore is the single source of truth for the running application:
// an in-memory collection mirrored to durable storage on every mutation.
// It is the only component that writes the durable blob; sync code only
// reads snapshots handed out by Snapshot.
//
// On a durable-write failure the in-memory mutation is kept and a
// StorageError is returned alongside it: the collection stays
// authoritative for the UI, durability is best-effort.
type LocalStore struct {
	mu         sync.RWMutex
	flights    []entity.FlightRecord
	filters    entity.FilterSpec
	selectedID string

	persister SnapshotPersister
	log       logger.Logger

	listenerMu   sync.Mutex
	listeners    map[int]func()
	nextListener int

	// overridable for tests
	now   func() time.Time
	newID func() string
}

// NewLocalStore creates an empty store. Call Load to hydrate it from the
// durable mirror.
func NewLocalStore(persister SnapshotPersister, log logger.Logger) *LocalStore {
	return &LocalStore{
		persister: persister,
		log:       log,
		listeners: make(map[int]func()),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Load hydrates the collection from the durable mirror. A corrupt or
// unreadable blob degrades to an empty collection with the error
// surfaced, never a crash.
func (s *LocalStore) Load() error {
	flights, filters, err := s.persister.Load()

	s.mu.Lock()
	s.flights = flights
	s.filters = filters
	s.mu.Unlock()

	return err
}

// Subscribe registers a listener invoked after every successful mutation.
// The returned function unsubscribes it.
func (s *LocalStore) Subscribe(listener func()) func() {
	s.listenerMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *LocalStore) notify() {
	s.listenerMu.Lock()
	listeners := make([]func(), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenerMu.Unlock()

	for _, l := range listeners {
		l()
	}
}

// AddFlight validates and normalizes the form, assigns a fresh id and
// creation timestamp, appends the record and persists. Validation
// failures reject before any state changes.
func (s *LocalStore) AddFlight(form entity.FlightForm) (entity.FlightRecord, error) {
	if messages := form.Validate(s.now()); len(messages) > 0 {
		return entity.FlightRecord{}, &entity.ValidationError{Messages: messages}
	}

	rec := form.Normalize()
	rec.ID = s.newID()
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt

	s.mu.Lock()
	s.flights = append(s.flights, rec)
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return rec, err
}

// UpdateFlight merges partial fields into an existing record and
// persists. Unknown ids fail with NotFoundError.
func (s *LocalStore) UpdateFlight(id string, patch entity.FlightPatch) (entity.FlightRecord, error) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return entity.FlightRecord{}, &entity.NotFoundError{ID: id}
	}

	patch.Apply(&s.flights[idx])
	s.flights[idx].UpdatedAt = s.now()
	updated := s.flights[idx]
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return updated, err
}

// DeleteFlight removes the record with that id. Deleting an absent id is
// a no-op, not an error. Any selected-record reference to the id is
// cleared.
func (s *LocalStore) DeleteFlight(id string) error {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	s.flights = append(s.flights[:idx], s.flights[idx+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// ClearAll empties the collection. It refuses to act unless the caller
// passes explicit confirmation.
func (s *LocalStore) ClearAll(confirmed bool) error {
	if !confirmed {
		return &entity.ConfirmationRequiredError{Action: "clear all flights"}
	}

	s.mu.Lock()
	s.flights = nil
	s.selectedID = ""
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// ListFlights returns a new, filtered and sorted sequence; the internal
// collection is never handed out by reference. A nil filter uses the
// persisted filter state.
func (s *LocalStore) ListFlights(filter *entity.FilterSpec) []entity.FlightRecord {
	s.mu.RLock()
	records := make([]entity.FlightRecord, len(s.flights))
	copy(records, s.flights)
	spec := s.filters
	s.mu.RUnlock()

	if filter != nil {
		spec = *filter
	}
	return spec.Apply(records)
}

// Snapshot returns a point-in-time copy of the whole collection in
// insertion order, for the sync coordinator.
func (s *LocalStore) Snapshot() []entity.FlightRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]entity.FlightRecord, len(s.flights))
	copy(records, s.flights)
	return records
}

// Count returns the number of records currently held.
func (s *LocalStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.flights)
}

// Hydrate replaces the whole collection with records pulled from the
// remote datastore. It persists but deliberately does not emit a
// mutation event: the initial pull is not a local mutation and must not
// count as a pending change.
func (s *LocalStore) Hydrate(records []entity.FlightRecord) error {
	s.mu.Lock()
	s.flights = make([]entity.FlightRecord, len(records))
	copy(s.flights, records)
	err := s.persistLocked()
	s.mu.Unlock()

	return err
}

// SetFilters stores the UI filter state in the durable blob alongside
// the collection. Not a record mutation; listeners are not notified.
func (s *LocalStore) SetFilters(spec entity.FilterSpec) error {
	s.mu.Lock()
	s.filters = spec
	err := s.persistLocked()
	s.mu.Unlock()

	return err
}

// Filters returns the persisted filter state.
func (s *LocalStore) Filters() entity.FilterSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SelectFlight marks a record as currently selected.
func (s *LocalStore) SelectFlight(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(id) < 0 {
		return &entity.NotFoundError{ID: id}
	}
	s.selectedID = id
	return nil
}

// SelectedID returns the currently selected record id, or empty.
func (s *LocalStore) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

func (s *LocalStore) indexOfLocked(id string) int {
	for i := range s.flights {
		if s.flights[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *LocalStore) persistLocked() error {
	if err := s.persister.Save(s.flights, s.filters); err != nil {
		s.log.Error("Durable snapshot write failed, in-memory state retained", "error", err)
		if _, ok := err.(*entity.StorageError); ok {
			return err
		}
		return &entity.StorageError{Op: "save", Err: err}
	}
	return nil
}
