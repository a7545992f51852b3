package spl

import (
	"encoding/json"
	"fmt"
)

// StageKind identifies the command family of a pipeline stage. The kind
// doubles as the wire value in marshalled results, so the strings here are
// part of the stable surface consumed by front ends.
type StageKind string

const (
	KindFilter    StageKind = "filter"
	KindWhere     StageKind = "where"
	KindAggregate StageKind = "aggregate"
	KindSort      StageKind = "sort"
	KindLimit     StageKind = "limit"
	KindTop       StageKind = "top"
	KindEval      StageKind = "eval"
	KindProject   StageKind = "fields"
	KindDedup     StageKind = "dedup"
	KindHead      StageKind = "head"
	KindTail      StageKind = "tail"
	KindUnknown   StageKind = "unknown"
)

// Direction is the sort order of a sort stage.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// countUnset marks an integer count that could not be parsed from the stage
// text. The validator reports it; the generator never sees it.
const countUnset = -1

// Stage is one pipe-delimited step of a search pipeline. RawText always
// holds the original stage substring so the UI can render and remove the
// stage even when its grammar did not match.
type Stage struct {
	Kind    StageKind   `json:"kind"`
	RawText string      `json:"rawText"`
	Fields  StageFields `json:"fields"`
}

// StageFields is the per-kind payload of a Stage. Exactly one concrete
// variant exists per StageKind, and a Stage only ever carries the variant
// matching its Kind. Consumers should type-switch over all variants.
type StageFields interface {
	stageKind() StageKind
}

// FilterFields holds the opaque boolean condition of a search stage, or of
// an implicit first-stage filter with no leading keyword.
type FilterFields struct {
	Condition string `json:"condition"`
}

// WhereFields holds the condition of an explicit where stage.
type WhereFields struct {
	Condition string `json:"condition"`
}

// AggregateFields describes a stats stage. Field is empty for bare
// operations like count; GroupBy preserves the stated key order.
type AggregateFields struct {
	Operation string   `json:"operation"`
	Field     string   `json:"field,omitempty"`
	GroupBy   []string `json:"groupBy,omitempty"`
}

type SortFields struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

type LimitFields struct {
	Count      int    `json:"count"`
	OrderField string `json:"orderField,omitempty"`
}

type TopFields struct {
	Count int    `json:"count"`
	Field string `json:"field,omitempty"`
}

// EvalFields describes a computed column. The expression is forwarded to
// the generator opaquely, apart from string literal rewriting.
type EvalFields struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

type ProjectFields struct {
	Columns []string `json:"columns"`
}

type DedupFields struct {
	Fields []string `json:"fields"`
}

type HeadFields struct {
	Count int `json:"count"`
}

type TailFields struct {
	Count int `json:"count"`
}

// UnknownFields carries the unrecognized leading keyword of a stage so the
// UI can still display it. Unknown stages never contribute to SQL.
type UnknownFields struct {
	Keyword string `json:"keyword"`
}

// UnmarshalJSON restores the concrete fields variant matching the stage
// kind, keeping the wire shape symmetric for Go consumers.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind    StageKind       `json:"kind"`
		RawText string          `json:"rawText"`
		Fields  json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Kind = raw.Kind
	s.RawText = raw.RawText
	if len(raw.Fields) == 0 || string(raw.Fields) == "null" {
		s.Fields = nil
		return nil
	}
	fields, err := decodeFields(raw.Kind, raw.Fields)
	if err != nil {
		return err
	}
	s.Fields = fields
	return nil
}

func decodeFields(kind StageKind, data []byte) (StageFields, error) {
	switch kind {
	case KindFilter:
		return decodeInto[FilterFields](data)
	case KindWhere:
		return decodeInto[WhereFields](data)
	case KindAggregate:
		return decodeInto[AggregateFields](data)
	case KindSort:
		return decodeInto[SortFields](data)
	case KindLimit:
		return decodeInto[LimitFields](data)
	case KindTop:
		return decodeInto[TopFields](data)
	case KindEval:
		return decodeInto[EvalFields](data)
	case KindProject:
		return decodeInto[ProjectFields](data)
	case KindDedup:
		return decodeInto[DedupFields](data)
	case KindHead:
		return decodeInto[HeadFields](data)
	case KindTail:
		return decodeInto[TailFields](data)
	case KindUnknown:
		return decodeInto[UnknownFields](data)
	default:
		return nil, fmt.Errorf("unknown stage kind %q", kind)
	}
}

func decodeInto[T StageFields](data []byte) (StageFields, error) {
	var f T
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func (FilterFields) stageKind() StageKind    { return KindFilter }
func (WhereFields) stageKind() StageKind     { return KindWhere }
func (AggregateFields) stageKind() StageKind { return KindAggregate }
func (SortFields) stageKind() StageKind      { return KindSort }
func (LimitFields) stageKind() StageKind     { return KindLimit }
func (TopFields) stageKind() StageKind       { return KindTop }
func (EvalFields) stageKind() StageKind      { return KindEval }
func (ProjectFields) stageKind() StageKind   { return KindProject }
func (DedupFields) stageKind() StageKind     { return KindDedup }
func (HeadFields) stageKind() StageKind      { return KindHead }
func (TailFields) stageKind() StageKind      { return KindTail }
func (UnknownFields) stageKind() StageKind   { return KindUnknown }
