package mapping

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mapping associates one access point with the CRM tenant its guests sync to.
// A device maps to exactly one tenant at a time; re-mapping overwrites.
type Mapping struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DeviceID      string             `json:"device_id" bson:"device_id"`
	TenantID      string             `json:"tenant_id" bson:"tenant_id"`
	SubVenueLabel string             `json:"sub_venue_label,omitempty" bson:"sub_venue_label,omitempty"`
	SourceName    string             `json:"source_name,omitempty" bson:"source_name,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// OnboardResult summarizes a matcher-driven onboarding run.
type OnboardResult struct {
	Matched   bool     `json:"matched"`
	GroupName string   `json:"group_name,omitempty"`
	Venues    []string `json:"venues,omitempty"`
	Mapped    int      `json:"mapped"`
}
