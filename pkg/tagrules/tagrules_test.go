package tagrules

import (
	"context"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		script string
		event  Event
		want   []string
	}{
		{
			name:   "Static Tags",
			script: `tags = ["vip", "newsletter"]`,
			want:   []string{"vip", "newsletter"},
		},
		{
			name:   "Conditional On Label",
			script: `if label == "rooftop_bar" { tags = ["rooftop"] }`,
			event:  Event{Label: "rooftop_bar"},
			want:   []string{"rooftop"},
		},
		{
			name:   "No Assignment",
			script: `x := 1`,
			want:   []string{},
		},
		{
			name:   "Email Domain Tag",
			script: `if email != "" { tags = ["has-email"] }`,
			event:  Event{Email: "g@x.com"},
			want:   []string{"has-email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(context.Background(), tt.script, tt.event)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Evaluate() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Evaluate()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEvaluateBadScript(t *testing.T) {
	if _, err := Evaluate(context.Background(), `tags = `, Event{}); err == nil {
		t.Error("expected compile error for malformed script")
	}
}
