// Package pos tracks source positions for the lexer and parser.
//
// Every token and instruction node carries a Span so that a
// MalformedBrackets error (or, in principle, any future diagnostic) can
// point at a precise line and column rather than a bare byte offset.
package pos

import (
	"fmt"
	"sort"
)

// Location is a single point in the source text.
type Location struct {
	Line   int32
	Column int32
	Cursor int32
}

// Span is a half-open range between two Locations.
type Span struct {
	Start Location
	End   Location
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		if s.Start.Column == s.End.Column {
			return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
		}
		return fmt.Sprintf("%d:%d..%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d..%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// LineIndex turns a byte cursor into a Location by binary-searching
// line-start offsets. Construction is O(n) over the input; lookups are
// O(log lines). Intended to be built once per source string and reused
// for every Span produced while walking it.
type LineIndex struct {
	input     []byte
	lineStart []int
}

// NewLineIndex scans input once, recording where every line begins.
func NewLineIndex(input []byte) *LineIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range input {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &LineIndex{input: input, lineStart: lineStart}
}

// Span builds a Span covering the half-open byte range [start, end).
func (li *LineIndex) Span(start, end int) Span {
	return Span{Start: li.LocationAt(start), End: li.LocationAt(end)}
}

// LocationAt converts a byte cursor into a Location.
func (li *LineIndex) LocationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(li.input) {
		cursor = len(li.input)
	}

	lineIdx := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}

	lineStart := li.lineStart[lineIdx]
	col := cursor - lineStart + 1

	return Location{
		Line:   int32(lineIdx + 1),
		Column: int32(col),
		Cursor: int32(cursor),
	}
}
