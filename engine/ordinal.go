package engine

import (
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// ORDINAL SCALE — impact / innovation label mapping
// ============================================================================

// OrdinalScale maps ordinal values to display labels and back.
type OrdinalScale struct {
	labels map[int]string
	values map[string]int
}

// DefaultOrdinalScale is {5: "Alto", 3: "Medio", 1: "Bajo"}.
func DefaultOrdinalScale() OrdinalScale {
	return NewOrdinalScale(map[int]string{5: "Alto", 3: "Medio", 1: "Bajo"})
}

// NewOrdinalScale builds a scale from value → label.
func NewOrdinalScale(labels map[int]string) OrdinalScale {
	s := OrdinalScale{
		labels: make(map[int]string, len(labels)),
		values: make(map[string]int, len(labels)),
	}
	for v, l := range labels {
		s.labels[v] = l
		s.values[l] = v
	}
	return s
}

// Label returns the display label for v, or NotAvailable when unmapped.
func (s OrdinalScale) Label(v int) string {
	if l, ok := s.labels[v]; ok {
		return l
	}
	return NotAvailable
}

// Value translates a label into its ordinal.
func (s OrdinalScale) Value(label string) (int, bool) {
	v, ok := s.values[label]
	return v, ok
}

// Labels returns labels ordered from highest to lowest value.
func (s OrdinalScale) Labels() []string {
	vals := make([]int, 0, len(s.labels))
	for v := range s.labels {
		vals = append(vals, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = s.labels[v]
	}
	return out
}

// IsZero reports whether the scale has no labels.
func (s OrdinalScale) IsZero() bool { return len(s.labels) == 0 }

// String is the canonical "value=label" form, highest value first. Equal
// scales give equal strings.
func (s OrdinalScale) String() string {
	vals := make([]int, 0, len(s.labels))
	for v := range s.labels {
		vals = append(vals, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v) + "=" + s.labels[v]
	}
	return strings.Join(parts, ",")
}
