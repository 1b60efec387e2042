package repository

import (
	"context"

	"flightlog-service/internal/domain/entity"
)

// RemoteFlightRepository is the boundary to the hosted remote datastore.
// Implementations are stateless translators and transports: they never
// hold authoritative record state. Every operation requires a valid owner
// UUID and fails fast with entity.FormatError otherwise.
type RemoteFlightRepository interface {
	// LoadAll fetches every row for the owner. An owner with no rows
	// yields an empty slice, not an error.
	LoadAll(ctx context.Context, ownerID string) ([]entity.FlightRecord, error)

	// ReconcileAll upserts every local record keyed by id, then deletes
	// any remote row absent from records. Remote state becomes a mirror
	// of local state for this owner.
	ReconcileAll(ctx context.Context, ownerID string, records []entity.FlightRecord) error

	// InsertOne inserts a single row, returning entity.DuplicateError if
	// the id already exists remotely.
	InsertOne(ctx context.Context, ownerID string, record entity.FlightRecord) error

	// UpdateOne merges partial fields into the current remote row,
	// returning entity.NotFoundError if no such row exists. Callers fall
	// back to ReconcileAll on NotFoundError.
	UpdateOne(ctx context.Context, ownerID, id string, patch entity.FlightPatch) error

	// DeleteOne removes a row by owner and id. Absence is not an error.
	DeleteOne(ctx context.Context, ownerID, id string) error

	// DeleteAllByOwner removes every row for the owner.
	DeleteAllByOwner(ctx context.Context, ownerID string) error
}
