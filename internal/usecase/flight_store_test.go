package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

// memPersister keeps the durable mirror in memory and can be told to
// fail writes.
type memPersister struct {
	mu      sync.Mutex
	flights []entity.FlightRecord
	filters entity.FilterSpec
	saves   int
	failing bool
}

func (p *memPersister) Load() ([]entity.FlightRecord, entity.FilterSpec, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flights, p.filters, nil
}

func (p *memPersister) Save(flights []entity.FlightRecord, filters entity.FilterSpec) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return errors.New("disk full")
	}
	p.flights = make([]entity.FlightRecord, len(flights))
	copy(p.flights, flights)
	p.filters = filters
	p.saves++
	return nil
}

func newTestStore(t *testing.T) (*LocalStore, *memPersister) {
	t.Helper()
	persister := &memPersister{}
	store := NewLocalStore(persister, logger.NewNop())
	require.NoError(t, store.Load())
	return store, persister
}

func addForm() entity.FlightForm {
	return entity.FlightForm{
		Date:         "2024-01-10",
		Airline:      "Turkish Airlines",
		FlightNumber: "tk415",
		Origin:       "Moscow",
		Destination:  "Istanbul",
	}
}

func TestAddFlight_NormalizesAndPersists(t *testing.T) {
	store, persister := newTestStore(t)

	rec, err := store.AddFlight(addForm())
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "TK415", rec.FlightNumber)
	assert.Equal(t, entity.ClassEconomy, rec.Class)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	listed := store.ListFlights(nil)
	require.Len(t, listed, 1)
	assert.Equal(t, rec, listed[0])
	assert.Equal(t, 1, persister.saves)
}

func TestAddFlight_ValidationRejectsBeforeMutating(t *testing.T) {
	store, persister := newTestStore(t)

	form := addForm()
	form.Date = time.Now().AddDate(0, 0, 1).Format(entity.DateLayout)

	_, err := store.AddFlight(form)

	var verr *entity.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Messages, "date must not be in the future")
	assert.Zero(t, store.Count())
	assert.Zero(t, persister.saves)
}

func TestAddFlight_ValidationUsesInjectedClock(t *testing.T) {
	store, _ := newTestStore(t)
	store.now = func() time.Time { return time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC) }

	form := addForm()
	form.Date = "2030-05-31"

	rec, err := store.AddFlight(form)
	require.NoError(t, err, "future relative to the wall clock, past relative to the injected one")
	assert.Equal(t, "2030-05-31", rec.Date)
}

func TestAddFlight_PersistFailureKeepsMemory(t *testing.T) {
	store, persister := newTestStore(t)
	persister.failing = true

	rec, err := store.AddFlight(addForm())

	var serr *entity.StorageError
	require.True(t, errors.As(err, &serr))
	// in-memory state stays authoritative for the UI
	require.Len(t, store.ListFlights(nil), 1)
	assert.Equal(t, rec.ID, store.ListFlights(nil)[0].ID)
}

func TestUpdateFlight(t *testing.T) {
	store, _ := newTestStore(t)
	rec, err := store.AddFlight(addForm())
	require.NoError(t, err)

	store.now = func() time.Time { return rec.CreatedAt.Add(time.Hour) }

	seat := "12a"
	updated, err := store.UpdateFlight(rec.ID, entity.FlightPatch{Seat: &seat})
	require.NoError(t, err)

	assert.Equal(t, "12A", updated.Seat)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(rec.UpdatedAt))
}

func TestUpdateFlight_UnknownID(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.UpdateFlight("missing", entity.FlightPatch{})

	var nf *entity.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDeleteFlight_IdempotentAndClearsSelection(t *testing.T) {
	store, _ := newTestStore(t)
	rec, err := store.AddFlight(addForm())
	require.NoError(t, err)
	require.NoError(t, store.SelectFlight(rec.ID))

	require.NoError(t, store.DeleteFlight(rec.ID))
	assert.Zero(t, store.Count())
	assert.Empty(t, store.SelectedID())

	// second delete of the same id is a no-op, not an error
	require.NoError(t, store.DeleteFlight(rec.ID))
}

func TestClearAll_RequiresConfirmation(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.AddFlight(addForm())
	require.NoError(t, err)

	err = store.ClearAll(false)
	var creq *entity.ConfirmationRequiredError
	require.True(t, errors.As(err, &creq))
	assert.Equal(t, 1, store.Count())

	require.NoError(t, store.ClearAll(true))
	assert.Zero(t, store.Count())
}

func TestListFlights_ReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.AddFlight(addForm())
	require.NoError(t, err)

	listed := store.ListFlights(nil)
	listed[0].Airline = "Mutated"

	assert.Equal(t, "Turkish Airlines", store.ListFlights(nil)[0].Airline)
}

func TestListFlights_DefaultSortDateDescending(t *testing.T) {
	store, _ := newTestStore(t)

	older := addForm()
	older.Date = "2023-06-01"
	_, err := store.AddFlight(older)
	require.NoError(t, err)
	newest, err := store.AddFlight(addForm())
	require.NoError(t, err)

	listed := store.ListFlights(&entity.FilterSpec{SortBy: entity.SortByDate, SortOrder: entity.SortDesc})
	require.Len(t, listed, 2)
	assert.Equal(t, newest.ID, listed[0].ID)
}

func TestSubscribe_NotifiesOnMutations(t *testing.T) {
	store, _ := newTestStore(t)

	var mu sync.Mutex
	calls := 0
	unsubscribe := store.Subscribe(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	rec, err := store.AddFlight(addForm())
	require.NoError(t, err)
	require.NoError(t, store.DeleteFlight(rec.ID))
	assert.Equal(t, 2, calls)

	unsubscribe()
	_, err = store.AddFlight(addForm())
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "no notifications after unsubscribe")
}

func TestHydrate_DoesNotNotify(t *testing.T) {
	store, persister := newTestStore(t)

	calls := 0
	store.Subscribe(func() { calls++ })

	require.NoError(t, store.Hydrate([]entity.FlightRecord{{ID: "r1", Airline: "KLM"}}))

	assert.Equal(t, 1, store.Count())
	assert.Zero(t, calls, "hydration is not a local mutation")
	assert.Equal(t, 1, persister.saves)
}

func TestStatisticsMatchListing(t *testing.T) {
	store, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		_, err := store.AddFlight(addForm())
		require.NoError(t, err)
	}

	stats := entity.ComputeStatistics(store.ListFlights(nil))
	assert.Equal(t, len(store.ListFlights(nil)), stats.TotalFlights)
}
