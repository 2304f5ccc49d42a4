package tenant

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connection holds the OAuth credentials for one CRM tenant (location).
// Rows are never physically deleted; uninstall flips Active off so history
// and re-authorization keep working.
type Connection struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID       string             `json:"tenant_id" bson:"tenant_id"`
	AccessToken    string             `json:"-" bson:"access_token"`
	RefreshToken   string             `json:"-" bson:"refresh_token"`
	TokenExpiresAt time.Time          `json:"token_expires_at" bson:"token_expires_at"`
	Active         bool               `json:"active" bson:"active"`

	// TagScript is an optional Tengo snippet that adds per-tenant tags to
	// each synced contact.
	TagScript string `json:"tag_script,omitempty" bson:"tag_script,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
