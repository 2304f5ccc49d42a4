package normalize

import (
	"errors"
	"testing"
)

func TestDeviceID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "Colon Separated", raw: "00:18:0A:27:29:76", want: "00:18:0a:27:29:76"},
		{name: "Hyphen Separated", raw: "00-18-0a-27-29-76", want: "00:18:0a:27:29:76"},
		{name: "Dot Separated", raw: "0018.0a27.2976", want: "00:18:0a:27:29:76"},
		{name: "Bare Hex", raw: "00180a272976", want: "00:18:0a:27:29:76"},
		{name: "Surrounding Whitespace", raw: "  00180A272976 ", want: "00:18:0a:27:29:76"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeviceID(tt.raw)
			if err != nil {
				t.Fatalf("DeviceID(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("DeviceID(%q) = %q, want %q", tt.raw, got, tt.want)
			}

			// Normalizing twice must yield the same result as once
			again, err := DeviceID(got)
			if err != nil {
				t.Fatalf("DeviceID(%q) second pass error = %v", got, err)
			}
			if again != got {
				t.Errorf("DeviceID not idempotent: %q != %q", again, got)
			}
		})
	}
}

func TestDeviceIDInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "Too Short", raw: "00:18:0a:27:29"},
		{name: "Too Long", raw: "00:18:0a:27:29:76:aa"},
		{name: "Non Hex", raw: "00:18:0g:27:29:76"},
		{name: "Empty", raw: ""},
		{name: "Garbage", raw: "not a mac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DeviceID(tt.raw); !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("DeviceID(%q) error = %v, want ErrInvalidFormat", tt.raw, err)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "Apostrophe", raw: "Joe's Diner", want: "joes_diner"},
		{name: "Ampersand", raw: "Fish & Chips", want: "fish_and_chips"},
		{name: "Punctuation", raw: "The Plough, Eaton!", want: "the_plough_eaton"},
		{name: "Whitespace Collapse", raw: "  Acme   Group  ", want: "acme_group"},
		{name: "Mixed", raw: "O'Malley's Bar & Grill", want: "omalleys_bar_and_grill"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.raw); got != tt.want {
				t.Errorf("Label(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
