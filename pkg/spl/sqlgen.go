package spl

import (
	"fmt"
	"strings"
)

// EventsTable is the fixed logical table every generated statement reads.
const EventsTable = "events"

// generator accumulates clause families while folding stages left to right.
type generator struct {
	aggCols    []string
	projCols   []string
	evalCols   []string
	predicates []string
	groupBy    []string
	orderBy    []string
	limit      int
	tailCount  int
	diags      []Diagnostic
}

// generate folds the ordered stages into one syntactically complete SQL
// statement. Stages flagged by the validator are skipped but the statement
// is still produced, so the caller always has a best-effort preview.
// Generation can add its own diagnostics for stage combinations that only
// conflict once folded (dedup after stats).
func generate(stages []Stage, failed []bool) (string, []Diagnostic) {
	g := &generator{limit: countUnset, tailCount: countUnset}
	for i, stage := range stages {
		if failed[i] {
			continue
		}
		g.fold(stage)
	}
	return g.render(), g.diags
}

func (g *generator) fold(stage Stage) {
	switch f := stage.Fields.(type) {
	case FilterFields:
		g.predicates = append(g.predicates, rewriteLiterals(f.Condition))
	case WhereFields:
		g.predicates = append(g.predicates, rewriteLiterals(f.Condition))
	case AggregateFields:
		g.foldAggregate(f)
	case SortFields:
		g.orderBy = append(g.orderBy, f.Field+" "+sqlDirection(f.Direction))
	case LimitFields:
		g.limit = f.Count
		if f.OrderField != "" {
			g.orderBy = append(g.orderBy, f.OrderField+" ASC")
		}
	case TopFields:
		g.foldTop(f)
	case EvalFields:
		g.evalCols = append(g.evalCols, rewriteLiterals(f.Expression)+" AS "+f.Name)
	case ProjectFields:
		g.projCols = f.Columns
	case DedupFields:
		if len(g.aggCols) > 0 {
			g.diags = append(g.diags, Diagnostic{Message: "dedup is ignored because stats already groups the results"})
			return
		}
		g.groupBy = f.Fields
	case HeadFields:
		g.limit = f.Count
	case TailFields:
		g.tailCount = f.Count
	case UnknownFields:
		// Unknown stages are already diagnosed and contribute nothing.
	}
}

func (g *generator) foldAggregate(f AggregateFields) {
	agg := strings.ToUpper(f.Operation) + "("
	if f.Field == "" {
		agg += "*"
	} else {
		agg += f.Field
	}
	agg += ")"
	g.aggCols = append(append([]string{}, f.GroupBy...), agg)
	g.groupBy = f.GroupBy
}

// foldTop renders `top N field` as a grouped count ordered by frequency.
// A bare `top N` only truncates. When a stats stage already set the
// projection it wins, and top contributes its LIMIT alone.
func (g *generator) foldTop(f TopFields) {
	g.limit = f.Count
	if f.Field == "" || len(g.aggCols) > 0 {
		return
	}
	g.aggCols = []string{f.Field, "COUNT(*) AS event_count"}
	g.groupBy = []string{f.Field}
	g.orderBy = append(g.orderBy, "event_count DESC")
}

func (g *generator) render() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(g.selectList(), ", "))
	b.WriteString(" FROM ")
	b.WriteString(EventsTable)
	if len(g.predicates) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(g.predicates, " AND "))
	}
	if len(g.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(g.groupBy, ", "))
	}

	if g.tailCount != countUnset {
		return g.renderTail(b.String())
	}

	if len(g.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(g.orderBy, ", "))
	}
	if g.limit != countUnset {
		fmt.Fprintf(&b, " LIMIT %d", g.limit)
	}
	return b.String()
}

// selectList resolves the projection precedence: a stats stage wins over a
// fields stage, and eval columns are always appended.
func (g *generator) selectList() []string {
	cols := g.aggCols
	if len(cols) == 0 {
		cols = g.projCols
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	return append(append([]string{}, cols...), g.evalCols...)
}

// renderTail wraps the statement so the last rows are selected by reversing
// the ordering and truncating. The outer statement does not restore the
// original order; that is an accepted approximation of tail semantics.
func (g *generator) renderTail(inner string) string {
	var b strings.Builder
	b.WriteString(inner)
	if len(g.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(reverseOrder(g.orderBy), ", "))
	}
	fmt.Fprintf(&b, " LIMIT %d", g.tailCount)
	return fmt.Sprintf("SELECT * FROM (%s) AS last_rows", b.String())
}

func reverseOrder(terms []string) []string {
	reversed := make([]string, len(terms))
	for i, t := range terms {
		switch {
		case strings.HasSuffix(t, " ASC"):
			reversed[i] = strings.TrimSuffix(t, " ASC") + " DESC"
		case strings.HasSuffix(t, " DESC"):
			reversed[i] = strings.TrimSuffix(t, " DESC") + " ASC"
		default:
			reversed[i] = t + " DESC"
		}
	}
	return reversed
}

func sqlDirection(d Direction) string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// rewriteLiterals converts every double-quoted literal in a condition or
// eval expression into a single-quoted SQL literal, doubling any embedded
// quote characters so a value can never terminate the literal early.
func rewriteLiterals(s string) string {
	var (
		b       strings.Builder
		literal strings.Builder
		inQuote bool
	)
	for _, c := range s {
		switch {
		case c == '"' && !inQuote:
			inQuote = true
			literal.Reset()
		case c == '"' && inQuote:
			inQuote = false
			b.WriteByte('\'')
			b.WriteString(escapeQuotes(literal.String()))
			b.WriteByte('\'')
		case inQuote:
			literal.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	if inQuote {
		// Unterminated literal: close it rather than emit a dangling quote.
		b.WriteByte('\'')
		b.WriteString(escapeQuotes(literal.String()))
		b.WriteByte('\'')
	}
	return b.String()
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
