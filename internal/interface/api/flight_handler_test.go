package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/infrastructure/persistence"
	"flightlog-service/internal/usecase"
	"flightlog-service/pkg/logger"
)

const testOwner = "9f4b5c9e-8f0a-4d9b-b8f0-3a2d1c5e7a91"

func newTestServer(t *testing.T) (*testServer, *usecase.LocalStore) {
	t.Helper()

	store := usecase.NewLocalStore(persistence.NewSnapshotStore(t.TempDir()), logger.NewNop())
	require.NoError(t, store.Load())

	owner := entity.UserIdentity{ID: testOwner, DisplayName: "Traveler", Origin: entity.OriginStandalone}
	coordinator := usecase.NewSyncCoordinator(store, nil, owner, usecase.StaticChecker(false), time.Second, time.Hour, nil, logger.NewNop())
	require.NoError(t, coordinator.Start(context.Background()))
	t.Cleanup(coordinator.Close)

	router := NewRouter(
		NewFlightHandler(store, logger.NewNop()),
		NewSyncHandler(coordinator, owner, logger.NewNop()),
	)
	return &testServer{router: router}, store
}

type testServer struct {
	router http.Handler
}

func (m *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	m.router.ServeHTTP(rec, req)
	return rec
}

// stallRemote parks ReconcileAll until gate is closed; every other
// operation is a successful no-op.
type stallRemote struct {
	gate chan struct{}
}

func (s *stallRemote) LoadAll(ctx context.Context, ownerID string) ([]entity.FlightRecord, error) {
	return nil, nil
}

func (s *stallRemote) ReconcileAll(ctx context.Context, ownerID string, records []entity.FlightRecord) error {
	<-s.gate
	return nil
}

func (s *stallRemote) InsertOne(ctx context.Context, ownerID string, record entity.FlightRecord) error {
	return nil
}

func (s *stallRemote) UpdateOne(ctx context.Context, ownerID, id string, patch entity.FlightPatch) error {
	return nil
}

func (s *stallRemote) DeleteOne(ctx context.Context, ownerID, id string) error {
	return nil
}

func (s *stallRemote) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	return nil
}

func validPayload() map[string]string {
	return map[string]string{
		"date":         "2024-01-10",
		"airline":      "Turkish Airlines",
		"flightNumber": "tk415",
		"origin":       "Moscow",
		"destination":  "Istanbul",
	}
}

func TestCreateFlight(t *testing.T) {
	server, store := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/flights", validPayload())

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, store.Count())
	assert.Equal(t, "TK415", store.ListFlights(nil)[0].FlightNumber)
}

func TestCreateFlight_ValidationErrorsListed(t *testing.T) {
	server, store := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/flights", map[string]string{"airline": "KLM"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Errors, 4)
	assert.Zero(t, store.Count())
}

func TestListFlights_WithFilter(t *testing.T) {
	server, _ := newTestServer(t)
	server.do(t, http.MethodPost, "/api/flights", validPayload())

	other := validPayload()
	other["airline"] = "KLM"
	server.do(t, http.MethodPost, "/api/flights", other)

	rec := server.do(t, http.MethodGet, "/api/flights?airline=KLM", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []entity.FlightRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "KLM", resp.Data[0].Airline)
}

func TestDeleteFlight_Idempotent(t *testing.T) {
	server, store := newTestServer(t)
	server.do(t, http.MethodPost, "/api/flights", validPayload())
	id := store.ListFlights(nil)[0].ID

	assert.Equal(t, http.StatusOK, server.do(t, http.MethodDelete, "/api/flights/"+id, nil).Code)
	assert.Zero(t, store.Count())
	assert.Equal(t, http.StatusOK, server.do(t, http.MethodDelete, "/api/flights/"+id, nil).Code)
}

func TestUpdateFlight_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	rec := server.do(t, http.MethodPatch, "/api/flights/missing", map[string]string{"seat": "1A"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearAll_RequiresConfirmQuery(t *testing.T) {
	server, store := newTestServer(t)
	server.do(t, http.MethodPost, "/api/flights", validPayload())

	assert.Equal(t, http.StatusBadRequest, server.do(t, http.MethodDelete, "/api/flights", nil).Code)
	assert.Equal(t, 1, store.Count())

	assert.Equal(t, http.StatusOK, server.do(t, http.MethodDelete, "/api/flights?confirm=true", nil).Code)
	assert.Zero(t, store.Count())
}

func TestStats(t *testing.T) {
	server, _ := newTestServer(t)
	server.do(t, http.MethodPost, "/api/flights", validPayload())

	rec := server.do(t, http.MethodGet, "/api/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data entity.FlightStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.TotalFlights)
}

func TestSyncStatus_StandaloneOffline(t *testing.T) {
	server, _ := newTestServer(t)

	rec := server.do(t, http.MethodGet, "/api/sync/status", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data entity.SyncState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Online)
}

func TestForceSync_OfflineReturnsWarning(t *testing.T) {
	server, _ := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/sync/force", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Warning, "offline")
}

func TestForceSync_BusyReportsInProgress(t *testing.T) {
	remote := &stallRemote{gate: make(chan struct{})}
	store := usecase.NewLocalStore(persistence.NewSnapshotStore(t.TempDir()), logger.NewNop())
	require.NoError(t, store.Load())

	owner := entity.UserIdentity{ID: testOwner, DisplayName: "Traveler", Origin: entity.OriginStandalone}
	coordinator := usecase.NewSyncCoordinator(store, remote, owner, usecase.StaticChecker(true), time.Hour, time.Hour, nil, logger.NewNop())
	require.NoError(t, coordinator.Start(context.Background()))
	t.Cleanup(func() {
		close(remote.gate)
		coordinator.Close()
	})

	server := &testServer{router: NewRouter(
		NewFlightHandler(store, logger.NewNop()),
		NewSyncHandler(coordinator, owner, logger.NewNop()),
	)}

	go coordinator.ForceSync()
	require.Eventually(t, func() bool { return coordinator.Status().IsSyncing }, time.Second, 5*time.Millisecond)

	rec := server.do(t, http.MethodPost, "/api/sync/force", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Warning, "in progress")
}

func TestMe(t *testing.T) {
	server, _ := newTestServer(t)

	rec := server.do(t, http.MethodGet, "/api/me", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data entity.UserIdentity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testOwner, resp.Data.ID)
}
