package spl

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Keywords recognized at the head of a stage, mapped to the stage kind they
// introduce. Matching is case-insensitive.
var stageKeywords = map[string]StageKind{
	"search": KindFilter,
	"where":  KindWhere,
	"stats":  KindAggregate,
	"sort":   KindSort,
	"limit":  KindLimit,
	"top":    KindTop,
	"eval":   KindEval,
	"fields": KindProject,
	"dedup":  KindDedup,
	"head":   KindHead,
	"tail":   KindTail,
}

var aggCallPattern = regexp.MustCompile(`^(\w+)\s*\(\s*([^)]*?)\s*\)$`)

// parseStage classifies one trimmed stage substring and extracts its typed
// fields. Grammar mismatches never fail here; they leave zero-value fields
// for the validator so partial stages still render.
func parseStage(raw string, first bool) Stage {
	keyword, rest := splitKeyword(raw)
	kind, ok := stageKeywords[strings.ToLower(keyword)]
	if !ok {
		if first {
			// A bare first stage like `event_category = "Network"` is an
			// implicit filter over its full text.
			return Stage{Kind: KindFilter, RawText: raw, Fields: FilterFields{Condition: raw}}
		}
		return Stage{Kind: KindUnknown, RawText: raw, Fields: UnknownFields{Keyword: keyword}}
	}

	stage := Stage{Kind: kind, RawText: raw}
	switch kind {
	case KindFilter:
		stage.Fields = FilterFields{Condition: rest}
	case KindWhere:
		stage.Fields = WhereFields{Condition: rest}
	case KindAggregate:
		stage.Fields = parseAggregate(rest)
	case KindSort:
		stage.Fields = parseSort(rest)
	case KindLimit:
		stage.Fields = parseLimit(rest)
	case KindTop:
		stage.Fields = parseTop(rest)
	case KindEval:
		stage.Fields = parseEval(rest)
	case KindProject:
		stage.Fields = ProjectFields{Columns: splitFieldList(rest)}
	case KindDedup:
		stage.Fields = DedupFields{Fields: splitFieldList(rest)}
	case KindHead:
		stage.Fields = HeadFields{Count: parseCount(rest)}
	case KindTail:
		stage.Fields = TailFields{Count: parseCount(rest)}
	}
	return stage
}

// splitKeyword returns the first whitespace-delimited word and the trimmed
// remainder of the stage text.
func splitKeyword(raw string) (string, string) {
	i := strings.IndexFunc(raw, unicode.IsSpace)
	if i < 0 {
		return raw, ""
	}
	return raw[:i], strings.TrimSpace(raw[i:])
}

// parseAggregate handles `OPERATION[(field)] [by key[, key]]`.
func parseAggregate(rest string) AggregateFields {
	var f AggregateFields
	opPart := rest
	if op, by, found := cutWord(rest, "by"); found {
		opPart = op
		f.GroupBy = splitFieldList(by)
	}
	opPart = strings.TrimSpace(opPart)
	if opPart == "" {
		return f
	}
	if m := aggCallPattern.FindStringSubmatch(opPart); m != nil {
		f.Operation = strings.ToLower(m[1])
		f.Field = m[2]
		return f
	}
	f.Operation = strings.ToLower(opPart)
	return f
}

// parseSort handles one field name with an optional leading '-' meaning
// descending order.
func parseSort(rest string) SortFields {
	f := SortFields{Direction: Ascending}
	field, _ := splitKeyword(rest)
	if strings.HasPrefix(field, "-") {
		f.Direction = Descending
		field = field[1:]
	}
	f.Field = field
	return f
}

func parseLimit(rest string) LimitFields {
	count, tail := splitKeyword(rest)
	f := LimitFields{Count: parseCount(count)}
	field, _ := splitKeyword(tail)
	f.OrderField = field
	return f
}

func parseTop(rest string) TopFields {
	count, tail := splitKeyword(rest)
	f := TopFields{Count: parseCount(count)}
	field, _ := splitKeyword(tail)
	f.Field = field
	return f
}

// parseEval handles `name = expression`, splitting on the first '='.
func parseEval(rest string) EvalFields {
	name, expr, found := strings.Cut(rest, "=")
	if !found {
		return EvalFields{}
	}
	return EvalFields{
		Name:       strings.TrimSpace(name),
		Expression: strings.TrimSpace(expr),
	}
}

// parseCount parses a non-negative integer, or countUnset when the text is
// missing or not a valid count.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return countUnset
	}
	return n
}

// splitFieldList splits a comma-separated field list, dropping empty names.
func splitFieldList(s string) []string {
	var fields []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// cutWord splits s around the first occurrence of word as a standalone,
// case-insensitive token. Used to find the `by` separator of a stats stage
// without matching field names that merely contain it.
func cutWord(s, word string) (before, after string, found bool) {
	tokens := strings.Fields(s)
	for i, t := range tokens {
		if strings.EqualFold(t, word) {
			return strings.Join(tokens[:i], " "), strings.Join(tokens[i+1:], " "), true
		}
	}
	return s, "", false
}
