package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	// TenantIDKey carries the CRM tenant (location) id through request contexts
	TenantIDKey ContextKey = "tenant_id"
)

// Log is the persisted shape of application log entries shipped to Mongo
// by the async zap tee core.
type Log struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Message      string             `json:"message" bson:"message"`
	TenantID     string             `json:"tenant_id,omitempty" bson:"tenant_id,omitempty"`
	LogLevelId   int                `json:"log_level_id" bson:"log_level_id"`
	Caller       string             `json:"caller,omitempty" bson:"caller,omitempty"`
	CreatedOnUtc time.Time          `json:"created_on_utc" bson:"created_on_utc"`
}
