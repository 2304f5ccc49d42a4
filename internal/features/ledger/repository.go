package ledger

import (
	"context"
	"time"

	"guestsync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LedgerRepository interface {
	Append(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, tenantID string, limit int64) ([]Entry, error)
	Since(ctx context.Context, after time.Time) ([]Entry, error)
	EnsureIndexes(ctx context.Context) error
}

type MarkerRepository interface {
	Exists(ctx context.Context, tenantID, email string) (bool, error)
	Create(ctx context.Context, tenantID, email string) error
	EnsureIndexes(ctx context.Context) error
}

type LedgerRepositoryImpl struct {
	collection *mongo.Collection
}

func NewLedgerRepository(db *database.MongodbDB) LedgerRepository {
	return &LedgerRepositoryImpl{
		collection: db.DB.Collection("sync_ledger"),
	}
}

func (r *LedgerRepositoryImpl) Append(ctx context.Context, entry *Entry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *LedgerRepositoryImpl) Recent(ctx context.Context, tenantID string, limit int64) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	filter := bson.M{}
	if tenantID != "" {
		filter["tenant_id"] = tenantID
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *LedgerRepositoryImpl) Since(ctx context.Context, after time.Time) ([]Entry, error) {
	filter := bson.M{"timestamp": bson.M{"$gt": after}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *LedgerRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	})
	return err
}

type MarkerRepositoryImpl struct {
	collection *mongo.Collection
}

func NewMarkerRepository(db *database.MongodbDB) MarkerRepository {
	return &MarkerRepositoryImpl{
		collection: db.DB.Collection("synced_contacts"),
	}
}

func (r *MarkerRepositoryImpl) Exists(ctx context.Context, tenantID, email string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{
		"tenant_id":     tenantID,
		"contact_email": email,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts the idempotence marker. A duplicate-key error means a
// concurrent sync won the race, which is the outcome we wanted anyway.
func (r *MarkerRepositoryImpl) Create(ctx context.Context, tenantID, email string) error {
	_, err := r.collection.InsertOne(ctx, Marker{
		ID:           primitive.NewObjectID(),
		TenantID:     tenantID,
		ContactEmail: email,
		CreatedAt:    time.Now(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *MarkerRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "contact_email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
