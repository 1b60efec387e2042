package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/domain/repository"
)

// GormFlightRepository implements RemoteFlightRepository on Postgres.
type GormFlightRepository struct {
	db *gorm.DB
}

// flightRow GORM model for database mapping. Primary key equals the
// local record id; owner_id partitions rows per user.
type flightRow struct {
	ID           string    `gorm:"column:id;primaryKey"`
	OwnerID      string    `gorm:"column:owner_id;index"`
	FlightDate   string    `gorm:"column:flight_date"`
	Airline      string    `gorm:"column:airline"`
	FlightNumber string    `gorm:"column:flight_number"`
	Origin       string    `gorm:"column:origin"`
	Destination  string    `gorm:"column:destination"`
	Aircraft     *string   `gorm:"column:aircraft"`
	Registration *string   `gorm:"column:registration"`
	Seat         *string   `gorm:"column:seat"`
	DistanceKm   *int      `gorm:"column:distance_km"`
	Duration     *string   `gorm:"column:duration"`
	TravelClass  string    `gorm:"column:travel_class"`
	Reason       *string   `gorm:"column:reason"`
	Note         *string   `gorm:"column:note"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name
func (flightRow) TableName() string {
	return "flight_rows"
}

// NewGormFlightRepository creates the Postgres-backed repository and
// ensures the table exists.
func NewGormFlightRepository(db *gorm.DB) (repository.RemoteFlightRepository, error) {
	if err := db.AutoMigrate(&flightRow{}); err != nil {
		return nil, err
	}
	return &GormFlightRepository{db: db}, nil
}

// LoadAll fetches all rows for the owner, newest first.
func (r *GormFlightRepository) LoadAll(ctx context.Context, ownerID string) ([]entity.FlightRecord, error) {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return nil, err
	}

	var rows []flightRow
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows)
	if result.Error != nil {
		return nil, &entity.ConnectivityError{Op: "load", Err: result.Error}
	}

	records := make([]entity.FlightRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

// ReconcileAll upserts every record by primary key, then deletes rows the
// local collection no longer contains. Running it twice with the same
// input leaves the remote state unchanged.
func (r *GormFlightRepository) ReconcileAll(ctx context.Context, ownerID string, records []entity.FlightRecord) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(records) == 0 {
			return tx.Where("owner_id = ?", ownerID).Delete(&flightRow{}).Error
		}

		rows := make([]flightRow, 0, len(records))
		ids := make([]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, recordToRow(ownerID, rec))
			ids = append(ids, rec.ID)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&rows).Error; err != nil {
			return err
		}

		return tx.Where("owner_id = ? AND id NOT IN ?", ownerID, ids).Delete(&flightRow{}).Error
	})
	if err != nil {
		return &entity.ConnectivityError{Op: "reconcile", Err: err}
	}
	return nil
}

// InsertOne inserts a single row, surfacing key collisions as
// DuplicateError so the caller can fall back to a reconcile.
func (r *GormFlightRepository) InsertOne(ctx context.Context, ownerID string, record entity.FlightRecord) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	row := recordToRow(ownerID, record)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &entity.DuplicateError{ID: record.ID}
		}
		return &entity.ConnectivityError{Op: "insert", Err: err}
	}
	return nil
}

// UpdateOne fetches the current remote row, merges the patch and
// re-upserts. NotFoundError signals the local store is ahead of remote.
func (r *GormFlightRepository) UpdateOne(ctx context.Context, ownerID, id string, patch entity.FlightPatch) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	var row flightRow
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return &entity.NotFoundError{ID: id}
		}
		return &entity.ConnectivityError{Op: "update", Err: result.Error}
	}

	rec := rowToRecord(row)
	patch.Apply(&rec)
	rec.UpdatedAt = time.Now().UTC()

	updated := recordToRow(ownerID, rec)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&updated).Error; err != nil {
		return &entity.ConnectivityError{Op: "update", Err: err}
	}
	return nil
}

// DeleteOne removes a row by owner and id. Absence is not an error.
func (r *GormFlightRepository) DeleteOne(ctx context.Context, ownerID, id string) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&flightRow{})
	if result.Error != nil {
		return &entity.ConnectivityError{Op: "delete", Err: result.Error}
	}
	return nil
}

// DeleteAllByOwner removes every row for the owner.
func (r *GormFlightRepository) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&flightRow{})
	if result.Error != nil {
		return &entity.ConnectivityError{Op: "delete-all", Err: result.Error}
	}
	return nil
}

// Row and record shapes differ only in field names and null markers.
// Unknown class/reason values read from the wire coerce to the default
// rather than failing the read.

func recordToRow(ownerID string, rec entity.FlightRecord) flightRow {
	return flightRow{
		ID:           rec.ID,
		OwnerID:      ownerID,
		FlightDate:   rec.Date,
		Airline:      rec.Airline,
		FlightNumber: rec.FlightNumber,
		Origin:       rec.Origin,
		Destination:  rec.Destination,
		Aircraft:     optString(rec.Aircraft),
		Registration: optString(rec.Registration),
		Seat:         optString(rec.Seat),
		DistanceKm:   rec.Distance,
		Duration:     optString(rec.Duration),
		TravelClass:  string(rec.Class),
		Reason:       optString(string(rec.Reason)),
		Note:         optString(rec.Note),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func rowToRecord(row flightRow) entity.FlightRecord {
	return entity.FlightRecord{
		ID:           row.ID,
		Date:         row.FlightDate,
		Airline:      row.Airline,
		FlightNumber: row.FlightNumber,
		Origin:       row.Origin,
		Destination:  row.Destination,
		Aircraft:     derefString(row.Aircraft),
		Registration: derefString(row.Registration),
		Seat:         derefString(row.Seat),
		Distance:     row.DistanceKm,
		Duration:     derefString(row.Duration),
		Class:        entity.CoerceClass(row.TravelClass),
		Reason:       entity.CoerceReason(derefString(row.Reason)),
		Note:         derefString(row.Note),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
