package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
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

// Contains reports whether off lies inside [Start, End).
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}

// ContainsSpan reports whether other lies fully inside s.
func (s Span) ContainsSpan(other Span) bool {
	return s.File == other.File && other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File {
		return false
	}
	return max(s.Start, other.Start) < min(s.End, other.End)
}

// IntersectsWith is like Overlaps but also accepts touching and empty spans.
func (s Span) IntersectsWith(other Span) bool {
	if s.File != other.File {
		return false
	}
	return other.Start <= s.End && other.End >= s.Start
}

// ShiftLeft moves the span n bytes towards the file start.
// A shift past offset zero leaves the span unchanged.
func (s Span) ShiftLeft(n uint32) Span {
	if n > s.Start {
		return s
	}
	return Span{
		File:  s.File,
		Start: s.Start - n,
		End:   s.End - n,
	}
}

func (s Span) ShiftRight(n uint32) Span {
	return Span{
		File:  s.File,
		Start: s.Start + n,
		End:   s.End + n,
	}
}

// Compare orders spans by file, start, then end.
func (s Span) Compare(other Span) int {
	switch {
	case s.File != other.File:
		if s.File < other.File {
			return -1
		}
		return 1
	case s.Start != other.Start:
		if s.Start < other.Start {
			return -1
		}
		return 1
	case s.End != other.End:
		if s.End < other.End {
			return -1
		}
		return 1
	}
	return 0
}
