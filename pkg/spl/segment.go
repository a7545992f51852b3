package spl

import "strings"

// Segment splits a raw query into its ordered pipeline stages. The stage
// separator is '|', except inside a double-quoted string literal. A quote
// always toggles quote state; the first matching closing quote wins, and
// backslashes are not treated as escapes at this level. Each stage is
// trimmed, and stages that are empty after trimming are dropped, so an
// empty or whitespace-only query yields no stages.
func Segment(raw string) []string {
	var (
		stages  []string
		buf     strings.Builder
		inQuote bool
	)
	emit := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			stages = append(stages, s)
		}
		buf.Reset()
	}
	for _, c := range raw {
		switch {
		case c == '"':
			inQuote = !inQuote
			buf.WriteRune(c)
		case c == '|' && !inQuote:
			emit()
		default:
			buf.WriteRune(c)
		}
	}
	emit()
	return stages
}
