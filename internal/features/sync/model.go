package sync

import "errors"

// ContactEvent is the inbound shape delivered by the captive-portal
// workflow. OptIn is polymorphic upstream (bool, string, array, object), so
// it stays untyped until classified.
type ContactEvent struct {
	DeviceID string      `json:"device_id"`
	Email    string      `json:"email"`
	Name     string      `json:"name,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	OptIn    interface{} `json:"opt_in,omitempty"`
}

// Result is what the webhook caller always receives, regardless of outcome.
type Result struct {
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	GHLContactID  string `json:"ghl_contact_id,omitempty"`
	GHLLocationID string `json:"ghl_location_id,omitempty"`
}

// BatchSummary aggregates per-status counts for a batch run.
type BatchSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Failure taxonomy. Validation and unmapped-device outcomes are client or
// configuration faults, never retried here; the rest surface upstream
// faults verbatim.
var (
	ErrMissingField   = errors.New("missing field")
	ErrUnmappedDevice = errors.New("unmapped device")
	ErrInactiveTenant = errors.New("inactive or missing connection")
	ErrAlreadySynced  = errors.New("already synced")
)
