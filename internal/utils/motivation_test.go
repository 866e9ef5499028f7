package utils

import "testing"

func TestMotivationReturnsKnownLine(t *testing.T) {
	known := make(map[string]bool, len(motivations))
	for _, line := range motivations {
		known[line] = true
	}

	for i := 0; i < 50; i++ {
		if line := Motivation(); !known[line] {
			t.Fatalf("unexpected motivation line: %q", line)
		}
	}
}
