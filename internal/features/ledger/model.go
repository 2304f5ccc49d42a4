package ledger

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Entry is one sync attempt and its outcome. Entries are append-only; the
// core never updates or deletes them.
type Entry struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID     string             `json:"tenant_id,omitempty" bson:"tenant_id,omitempty"`
	DeviceID     string             `json:"device_id,omitempty" bson:"device_id,omitempty"`
	ContactEmail string             `json:"contact_email" bson:"contact_email"`
	Status       string             `json:"status" bson:"status"`
	CRMContactID string             `json:"crm_contact_id,omitempty" bson:"crm_contact_id,omitempty"`
	ErrorDetail  string             `json:"error_detail,omitempty" bson:"error_detail,omitempty"`
	Timestamp    time.Time          `json:"timestamp" bson:"timestamp"`
}

// Marker prevents duplicate CRM contact creation for a (tenant, email)
// pair. Created on first successful sync, never updated.
type Marker struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID     string             `json:"tenant_id" bson:"tenant_id"`
	ContactEmail string             `json:"contact_email" bson:"contact_email"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
