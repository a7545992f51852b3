package spl

import "fmt"

// Diagnostic is a human-readable complaint about one pipeline stage, worded
// for direct display to the end user.
type Diagnostic struct {
	Message string `json:"message"`
}

// Aggregation operations accepted by a stats stage.
var knownOperations = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

// validate applies the per-kind structural checks. It returns the collected
// diagnostics plus a parallel slice marking which stages failed, so the
// generator can skip them while the UI still renders every stage. Validation
// is purely structural; it never consults a schema, so unknown field names
// pass through untouched.
func validate(stages []Stage) ([]Diagnostic, []bool) {
	diags := make([]Diagnostic, 0)
	failed := make([]bool, len(stages))
	for i, stage := range stages {
		msg := checkStage(stage)
		if msg != "" {
			diags = append(diags, Diagnostic{Message: msg})
			failed[i] = true
		}
	}
	return diags, failed
}

func checkStage(stage Stage) string {
	switch f := stage.Fields.(type) {
	case FilterFields:
		if f.Condition == "" {
			return "search requires a filter condition"
		}
	case WhereFields:
		if f.Condition == "" {
			return "where requires a filter condition"
		}
	case AggregateFields:
		if f.Operation == "" {
			return "stats requires an aggregation operation"
		}
		if !knownOperations[f.Operation] {
			return fmt.Sprintf("unknown aggregation operation %q", f.Operation)
		}
	case SortFields:
		if f.Field == "" {
			return "sort requires a field name"
		}
	case LimitFields:
		if f.Count == countUnset {
			return "limit requires a non-negative row count"
		}
	case TopFields:
		if f.Count == countUnset {
			return "top requires a non-negative row count"
		}
	case EvalFields:
		if f.Name == "" || f.Expression == "" {
			return "eval requires the form name = expression"
		}
	case ProjectFields:
		if len(f.Columns) == 0 {
			return "fields requires at least one field name"
		}
	case DedupFields:
		if len(f.Fields) == 0 {
			return "dedup requires at least one field name"
		}
	case HeadFields:
		if f.Count == countUnset {
			return "head requires a non-negative row count"
		}
	case TailFields:
		if f.Count == countUnset {
			return "tail requires a non-negative row count"
		}
	case UnknownFields:
		return fmt.Sprintf("unrecognized search command %q", f.Keyword)
	default:
		return fmt.Sprintf("stage %q has no recognizable fields", stage.RawText)
	}
	return ""
}
