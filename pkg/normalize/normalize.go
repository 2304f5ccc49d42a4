// Package normalize canonicalizes access-point identifiers and venue names.
// Onboarding and the sync hot path must agree on these keys, so everything
// here is pure and deterministic.
package normalize

import (
	"errors"
	"strings"
)

// ErrInvalidFormat is returned when a raw identifier does not reduce to a
// 6-octet hex MAC address.
var ErrInvalidFormat = errors.New("invalid device id format")

// DeviceID canonicalizes a raw MAC address. It accepts hex-only,
// colon-, hyphen-, or dot-separated forms, strips separators and whitespace,
// and returns the lowercase colon-separated form.
func DeviceID(raw string) (string, error) {
	stripped := StripDeviceID(raw)
	if len(stripped) != 12 {
		return "", ErrInvalidFormat
	}
	for _, r := range stripped {
		if !isHex(r) {
			return "", ErrInvalidFormat
		}
	}

	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(stripped[i : i+2])
	}
	return b.String(), nil
}

// StripDeviceID removes separators and whitespace and lowercases the rest.
// Callers that tolerate partial identifiers (bulk onboarding) use this to
// measure what is left before deciding to keep or skip the id.
func StripDeviceID(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	replacer := strings.NewReplacer(":", "", "-", "", ".", "", " ", "")
	return replacer.Replace(cleaned)
}

// Label derives a human-stable CRM tag from a venue name: apostrophes are
// dropped, "&" becomes "and", any other non-alphanumeric character is dropped,
// and runs of whitespace collapse to single underscores.
func Label(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = strings.ReplaceAll(s, "&", "and")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), "_")
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
