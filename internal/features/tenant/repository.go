package tenant

import (
	"context"
	"time"

	"guestsync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *Connection) error
	Get(ctx context.Context, tenantID string) (*Connection, error)
	UpdateTokens(ctx context.Context, tenantID, accessToken, refreshToken string, expiresAt time.Time) error
	Deactivate(ctx context.Context, tenantID string) error
	SetTagScript(ctx context.Context, tenantID, script string) error
	EnsureIndexes(ctx context.Context) error
}

type ConnectionRepositoryImpl struct {
	collection *mongo.Collection
}

func NewConnectionRepository(db *database.MongodbDB) ConnectionRepository {
	return &ConnectionRepositoryImpl{
		collection: db.DB.Collection("tenant_connections"),
	}
}

// Upsert writes the connection keyed by tenant_id. The storage-level
// conditional upsert keeps concurrent authorizations last-write-wins.
func (r *ConnectionRepositoryImpl) Upsert(ctx context.Context, conn *Connection) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"access_token":     conn.AccessToken,
			"refresh_token":    conn.RefreshToken,
			"token_expires_at": conn.TokenExpiresAt,
			"active":           conn.Active,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{
			"tenant_id":  conn.TenantID,
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"tenant_id": conn.TenantID}, update, opts)
	return err
}

func (r *ConnectionRepositoryImpl) Get(ctx context.Context, tenantID string) (*Connection, error) {
	var conn Connection
	err := r.collection.FindOne(ctx, bson.M{"tenant_id": tenantID}).Decode(&conn)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *ConnectionRepositoryImpl) UpdateTokens(ctx context.Context, tenantID, accessToken, refreshToken string, expiresAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"access_token":     accessToken,
			"refresh_token":    refreshToken,
			"token_expires_at": expiresAt,
			"updated_at":       time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"tenant_id": tenantID}, update)
	return err
}

func (r *ConnectionRepositoryImpl) Deactivate(ctx context.Context, tenantID string) error {
	update := bson.M{
		"$set": bson.M{
			"active":     false,
			"updated_at": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"tenant_id": tenantID}, update)
	return err
}

func (r *ConnectionRepositoryImpl) SetTagScript(ctx context.Context, tenantID, script string) error {
	update := bson.M{
		"$set": bson.M{
			"tag_script": script,
			"updated_at": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"tenant_id": tenantID}, update)
	return err
}

// EnsureIndexes guarantees at most one row per tenant_id.
func (r *ConnectionRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
