package spl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected []string
	}{
		"Empty": {
			input: "",
		},
		"Whitespace only": {
			input: "   \t  ",
		},
		"Single stage": {
			input:    `event_category = "Network"`,
			expected: []string{`event_category = "Network"`},
		},
		"Two stages": {
			input:    `user = "admin" | sort -timestamp`,
			expected: []string{`user = "admin"`, `sort -timestamp`},
		},
		"Pipe inside quoted literal": {
			input:    `message = "a|b" | limit 5`,
			expected: []string{`message = "a|b"`, `limit 5`},
		},
		"Leading pipe": {
			input:    `| stats count`,
			expected: []string{`stats count`},
		},
		"Empty stages dropped": {
			input:    `search a = 1 | | | head 2`,
			expected: []string{`search a = 1`, `head 2`},
		},
		"Unterminated quote swallows separator": {
			input:    `message = "a|b`,
			expected: []string{`message = "a|b`},
		},
	}

	for name, tc := range tests {
		name := name
		tc := tc
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Segment(tc.input))
		})
	}
}

func TestSegment_RejoinStable(t *testing.T) {
	queries := []string{
		`event_category = "Network"`,
		`user = "admin" | sort -timestamp | limit 10`,
		`message = "a|b" | stats count by dest_ip`,
		`severity = "Critical" | top 5 dest_ip`,
	}
	for _, q := range queries {
		first := Segment(q)
		second := Segment(strings.Join(first, " | "))
		assert.Equal(t, first, second, "query: %s", q)
	}
}
