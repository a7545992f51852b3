// Package spl compiles SPL-style, pipe-delimited search queries into SQL
// statements over a fixed events table. The compiler is lenient on purpose:
// malformed stages are reported as diagnostics while a best-effort statement
// is still produced, so a consuming UI can always render a preview. Callers
// should gate execution on Result.IsValid.
package spl

// Result is the complete outcome of one compilation. Its JSON shape is the
// stable wire surface shared by all front ends: SQL is always a
// syntactically complete statement, Stages preserves pipeline order and raw
// text, and IsValid is true exactly when Diagnostics is empty.
type Result struct {
	SQL         string       `json:"sql"`
	Stages      []Stage      `json:"stages"`
	IsValid     bool         `json:"isValid"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Transpile compiles a raw query into a Result. It is a pure function of
// its input: no I/O, no shared state, safe for concurrent use from
// independent call sites. Malformed input never returns an error; it is
// reported through Diagnostics. An empty or whitespace-only query produces
// the base unfiltered statement with no stages and no diagnostics.
func Transpile(raw string) Result {
	segments := Segment(raw)
	stages := make([]Stage, 0, len(segments))
	for i, seg := range segments {
		stages = append(stages, parseStage(seg, i == 0))
	}
	diags, failed := validate(stages)
	sql, genDiags := generate(stages, failed)
	diags = append(diags, genDiags...)
	return Result{
		SQL:         sql,
		Stages:      stages,
		IsValid:     len(diags) == 0,
		Diagnostics: diags,
	}
}
