// Package tagrules evaluates per-tenant scripts that compute extra CRM tags
// for a contact event. Scripts are written in Tengo and must assign a string
// array to the `tags` variable.
package tagrules

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
)

// Event is the read-only view of a contact event exposed to scripts.
type Event struct {
	DeviceID string
	Email    string
	Name     string
	Phone    string
	Label    string
}

// Evaluate compiles and runs the script, returning the tags it produced.
// A script that assigns nothing yields no tags and no error.
func Evaluate(ctx context.Context, scriptContent string, event Event) ([]string, error) {
	script := tengo.NewScript([]byte(scriptContent))

	script.Add("device_id", event.DeviceID)
	script.Add("email", event.Email)
	script.Add("name", event.Name)
	script.Add("phone", event.Phone)
	script.Add("label", event.Label)
	script.Add("tags", []interface{}{})

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile tag script: %w", err)
	}

	if err := compiled.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to run tag script: %w", err)
	}

	raw := compiled.Get("tags").Array()
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			tags = append(tags, s)
		}
	}
	return tags, nil
}
