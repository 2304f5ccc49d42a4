package sync

import "strings"

// OptInSignal is the classified form of the polymorphic opt-in field.
type OptInSignal int

const (
	// OptInDenied covers everything that is not clearly affirmative,
	// including an absent field. Consent is never assumed.
	OptInDenied OptInSignal = iota
	OptInGranted
)

// ClassifyOptIn interprets the upstream opt-in encoding. Affirmative forms:
// boolean true, the strings "yes"/"true"/"1" (case-insensitive), a
// non-empty array, or an object with at least one affirmative value.
func ClassifyOptIn(raw interface{}) OptInSignal {
	switch v := raw.(type) {
	case bool:
		if v {
			return OptInGranted
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "1":
			return OptInGranted
		}
	case []interface{}:
		if len(v) > 0 {
			return OptInGranted
		}
	case []string:
		if len(v) > 0 {
			return OptInGranted
		}
	case map[string]interface{}:
		for _, val := range v {
			if ClassifyOptIn(val) == OptInGranted {
				return OptInGranted
			}
		}
	}
	return OptInDenied
}
