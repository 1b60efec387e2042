package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/domain/repository"
	"flightlog-service/pkg/logger"
)

// MongoFlightRepository implements RemoteFlightRepository on MongoDB.
type MongoFlightRepository struct {
	collection *mongo.Collection
}

// flightDoc is the Mongo document shape. _id equals the local record id.
type flightDoc struct {
	ID           string    `bson:"_id"`
	OwnerID      string    `bson:"ownerId"`
	FlightDate   string    `bson:"flightDate"`
	Airline      string    `bson:"airline"`
	FlightNumber string    `bson:"flightNumber"`
	Origin       string    `bson:"origin"`
	Destination  string    `bson:"destination"`
	Aircraft     *string   `bson:"aircraft,omitempty"`
	Registration *string   `bson:"registration,omitempty"`
	Seat         *string   `bson:"seat,omitempty"`
	DistanceKm   *int      `bson:"distanceKm,omitempty"`
	Duration     *string   `bson:"duration,omitempty"`
	TravelClass  string    `bson:"travelClass"`
	Reason       *string   `bson:"reason,omitempty"`
	Note         *string   `bson:"note,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// NewMongoFlightRepository creates the Mongo-backed repository.
func NewMongoFlightRepository(db *mongo.Database, log logger.Logger) repository.RemoteFlightRepository {
	collection := db.Collection("flights")

	// Index on ownerId for partition queries. Queries still work without
	// it, so a failure here degrades performance, not correctness.
	ctx := context.Background()
	ownerIndex := mongo.IndexModel{
		Keys: bson.M{"ownerId": 1},
	}
	if _, err := collection.Indexes().CreateOne(ctx, ownerIndex); err != nil {
		log.Warn("Failed to create owner index on flights collection", "error", err)
	}

	return &MongoFlightRepository{collection: collection}
}

// LoadAll fetches all documents for the owner, newest first.
func (r *MongoFlightRepository) LoadAll(ctx context.Context, ownerID string) ([]entity.FlightRecord, error) {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, &entity.ConnectivityError{Op: "load", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []flightDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &entity.ConnectivityError{Op: "load", Err: err}
	}

	records := make([]entity.FlightRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, docToRecord(doc))
	}
	return records, nil
}

// ReconcileAll replaces every document by id, then removes documents the
// local collection no longer contains.
func (r *MongoFlightRepository) ReconcileAll(ctx context.Context, ownerID string, records []entity.FlightRecord) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	if len(records) == 0 {
		if _, err := r.collection.DeleteMany(ctx, bson.M{"ownerId": ownerID}); err != nil {
			return &entity.ConnectivityError{Op: "reconcile", Err: err}
		}
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		doc := recordToDoc(ownerID, rec)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
		ids = append(ids, rec.ID)
	}

	if _, err := r.collection.BulkWrite(ctx, models); err != nil {
		return &entity.ConnectivityError{Op: "reconcile", Err: err}
	}

	filter := bson.M{
		"ownerId": ownerID,
		"_id":     bson.M{"$nin": ids},
	}
	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return &entity.ConnectivityError{Op: "reconcile", Err: err}
	}
	return nil
}

// InsertOne inserts a single document; an existing _id surfaces as
// DuplicateError.
func (r *MongoFlightRepository) InsertOne(ctx context.Context, ownerID string, record entity.FlightRecord) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, recordToDoc(ownerID, record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &entity.DuplicateError{ID: record.ID}
		}
		return &entity.ConnectivityError{Op: "insert", Err: err}
	}
	return nil
}

// UpdateOne fetches the current document, merges the patch and replaces
// it. NotFoundError signals the local store is ahead of remote.
func (r *MongoFlightRepository) UpdateOne(ctx context.Context, ownerID, id string, patch entity.FlightPatch) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	var doc flightDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "ownerId": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &entity.NotFoundError{ID: id}
		}
		return &entity.ConnectivityError{Op: "update", Err: err}
	}

	rec := docToRecord(doc)
	patch.Apply(&rec)
	rec.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, recordToDoc(ownerID, rec), opts); err != nil {
		return &entity.ConnectivityError{Op: "update", Err: err}
	}
	return nil
}

// DeleteOne removes a document by owner and id. Absence is not an error.
func (r *MongoFlightRepository) DeleteOne(ctx context.Context, ownerID, id string) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID}); err != nil {
		return &entity.ConnectivityError{Op: "delete", Err: err}
	}
	return nil
}

// DeleteAllByOwner removes every document for the owner.
func (r *MongoFlightRepository) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	if err := entity.ParseOwnerID(ownerID); err != nil {
		return err
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"ownerId": ownerID}); err != nil {
		return &entity.ConnectivityError{Op: "delete-all", Err: err}
	}
	return nil
}

func recordToDoc(ownerID string, rec entity.FlightRecord) flightDoc {
	return flightDoc{
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

func docToRecord(doc flightDoc) entity.FlightRecord {
	return entity.FlightRecord{
		ID:           doc.ID,
		Date:         doc.FlightDate,
		Airline:      doc.Airline,
		FlightNumber: doc.FlightNumber,
		Origin:       doc.Origin,
		Destination:  doc.Destination,
		Aircraft:     derefString(doc.Aircraft),
		Registration: derefString(doc.Registration),
		Seat:         derefString(doc.Seat),
		Distance:     doc.DistanceKm,
		Duration:     derefString(doc.Duration),
		Class:        entity.CoerceClass(doc.TravelClass),
		Reason:       entity.CoerceReason(derefString(doc.Reason)),
		Note:         derefString(doc.Note),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
