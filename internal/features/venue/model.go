package venue

// Venue is reference data supplied by the external directory. The service
// only ever reads these records; ownership and device inventory are managed
// upstream.
type Venue struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	GroupName   string   `json:"group_name,omitempty"`
	OwnerEmails []string `json:"owner_emails"`
	DeviceIDs   []string `json:"device_ids"`
}

// OwnedBy reports whether the venue lists the email as an owner.
func (v Venue) OwnedBy(email string) bool {
	for _, e := range v.OwnerEmails {
		if equalFold(e, email) {
			return true
		}
	}
	return false
}
