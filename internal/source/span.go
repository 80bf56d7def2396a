package source

import (
	"fmt"
)

// FileID identifies the source file a span points into. The pass never
// resolves it; spans are carried from input to output untouched.
type FileID uint32

// Span is an opaque byte range attached to tree nodes.
type Span struct {
	File  FileID `json:"file,omitempty"`
	Start uint32 `json:"start"` // в байтах включительно
	End   uint32 `json:"end"`   // в байтах не включительно
}

// NoSpan marks synthesized nodes without a source location.
var NoSpan = Span{}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
