package spl

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func TestGenerate_Golden(t *testing.T) {
	tests := map[string]string{
		"base":             ``,
		"implicit_filter":  `event_category = "Network"`,
		"filter_sort_lim":  `user = "admin" | sort -timestamp | limit 10`,
		"stats_group":      `source_ip = "192.168.1.1" | stats count by dest_ip`,
		"top_field":        `severity = "Critical" | top 5 dest_ip`,
		"project_eval":     `status = 200 | fields url, status | eval label = "ok"`,
		"dedup":            `sourcetype = "firewall" | dedup src_ip, dest_ip`,
		"tail":             `user = "root" | sort -timestamp | tail 5`,
		"quoted_separator": `message = "a|b" | limit 5`,
	}

	g := goldie.New(t)
	for name, query := range tests {
		name := name
		query := query
		t.Run(name, func(t *testing.T) {
			result := Transpile(query)
			g.Assert(t, name, []byte(result.SQL))
		})
	}
}

func TestRewriteLiterals(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"No literal": {
			input:    `status = 200`,
			expected: `status = 200`,
		},
		"Plain literal": {
			input:    `event_category = "Network"`,
			expected: `event_category = 'Network'`,
		},
		"Embedded single quote doubled": {
			input:    `message = "it's"`,
			expected: `message = 'it''s'`,
		},
		"Multiple literals": {
			input:    `a = "x" AND b = "y"`,
			expected: `a = 'x' AND b = 'y'`,
		},
		"Unterminated literal closed": {
			input:    `message = "oops`,
			expected: `message = 'oops'`,
		},
	}

	for name, tc := range tests {
		name := name
		tc := tc
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, rewriteLiterals(tc.input))
		})
	}
}
