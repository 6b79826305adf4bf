package source

import (
	"testing"
)

func TestSpan_ShiftLeft(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		shift    uint32
		expected Span
	}{
		{
			name:     "shift normal span left by 5",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    5,
			expected: Span{File: 1, Start: 5, End: 15},
		},
		{
			name:     "shift equals start - boundary case",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    10,
			expected: Span{File: 1, Start: 0, End: 10},
		},
		{
			name:     "shift larger than start - returns original",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    15,
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "shift zero-length span",
			span:     Span{File: 1, Start: 10, End: 10},
			shift:    3,
			expected: Span{File: 1, Start: 7, End: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.ShiftLeft(tt.shift); got != tt.expected {
				t.Errorf("ShiftLeft(%d) = %v, want %v", tt.shift, got, tt.expected)
			}
		})
	}
}

func TestSpan_Overlaps(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Span
		overlaps  bool
		intersect bool
	}{
		{"disjoint", Span{Start: 0, End: 5}, Span{Start: 6, End: 9}, false, false},
		{"touching", Span{Start: 0, End: 5}, Span{Start: 5, End: 9}, false, true},
		{"nested", Span{Start: 0, End: 10}, Span{Start: 3, End: 4}, true, true},
		{"empty inside", Span{Start: 0, End: 10}, Span{Start: 3, End: 3}, false, true},
		{"other file", Span{File: 1, Start: 0, End: 10}, Span{File: 2, Start: 0, End: 10}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.overlaps {
				t.Errorf("Overlaps = %v, want %v", got, tt.overlaps)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.overlaps {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.overlaps)
			}
			if got := tt.a.IntersectsWith(tt.b); got != tt.intersect {
				t.Errorf("IntersectsWith = %v, want %v", got, tt.intersect)
			}
		})
	}
}

func TestSpan_CoverAndContains(t *testing.T) {
	a := Span{File: 3, Start: 4, End: 8}
	b := Span{File: 3, Start: 10, End: 12}
	c := a.Cover(b)
	if c != (Span{File: 3, Start: 4, End: 12}) {
		t.Fatalf("Cover = %v", c)
	}
	if !c.ContainsSpan(a) || !c.ContainsSpan(b) {
		t.Errorf("cover must contain both inputs")
	}
	if a.Cover(Span{File: 4, Start: 0, End: 100}) != a {
		t.Errorf("cover across files must return receiver")
	}
	if !a.Contains(4) || a.Contains(8) {
		t.Errorf("Contains must be half-open")
	}
}

func TestSpan_Compare(t *testing.T) {
	spans := []Span{
		{File: 0, Start: 1, End: 2},
		{File: 0, Start: 1, End: 3},
		{File: 0, Start: 2, End: 2},
		{File: 1, Start: 0, End: 0},
	}
	for i := range spans {
		for j := range spans {
			got := spans[i].Compare(spans[j])
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			if got != want {
				t.Errorf("Compare(%v, %v) = %d, want %d", spans[i], spans[j], got, want)
			}
		}
	}
}
