package mapping

import (
	"context"
	"errors"
	"time"

	"guestsync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MappingRepository interface {
	Upsert(ctx context.Context, m *Mapping) error
	FindByDeviceID(ctx context.Context, deviceID string) (*Mapping, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Mapping, error)
	EnsureIndexes(ctx context.Context) error
}

type MappingRepositoryImpl struct {
	collection *mongo.Collection
}

func NewMappingRepository(db *database.MongodbDB) MappingRepository {
	return &MappingRepositoryImpl{
		collection: db.DB.Collection("device_mappings"),
	}
}

// Upsert is keyed by device_id; last write wins, including re-mapping a
// device to a different tenant.
func (r *MappingRepositoryImpl) Upsert(ctx context.Context, m *Mapping) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"tenant_id":       m.TenantID,
			"sub_venue_label": m.SubVenueLabel,
			"source_name":     m.SourceName,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{
			"device_id":  m.DeviceID,
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"device_id": m.DeviceID}, update, opts)
	return err
}

func (r *MappingRepositoryImpl) FindByDeviceID(ctx context.Context, deviceID string) (*Mapping, error) {
	var m Mapping
	err := r.collection.FindOne(ctx, bson.M{"device_id": deviceID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MappingRepositoryImpl) ListByTenant(ctx context.Context, tenantID string) ([]Mapping, error) {
	opts := options.Find().SetSort(bson.D{{Key: "device_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var mappings []Mapping
	if err = cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

// EnsureIndexes backs the hot-path resolve with a unique device_id index.
func (r *MappingRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "device_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
