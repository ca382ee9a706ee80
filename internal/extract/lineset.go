package extract

import "sort"

// LineSet is a set of 0-based line numbers.
type LineSet map[int]struct{}

// NewLineSet creates a set holding lines.
func NewLineSet(lines ...int) LineSet {
	s := make(LineSet, len(lines))
	for _, line := range lines {
		s[line] = struct{}{}
	}
	return s
}

// Add inserts line and reports whether it was not already present.
func (s LineSet) Add(line int) bool {
	if _, ok := s[line]; ok {
		return false
	}
	s[line] = struct{}{}
	return true
}

// AddRange inserts every line in [from, to].
func (s LineSet) AddRange(from, to int) {
	for line := from; line <= to; line++ {
		s[line] = struct{}{}
	}
}

// Has reports whether line is in the set.
func (s LineSet) Has(line int) bool {
	_, ok := s[line]
	return ok
}

// Len returns the number of lines in the set.
func (s LineSet) Len() int {
	return len(s)
}

// Sorted returns the lines in ascending order.
func (s LineSet) Sorted() []int {
	lines := make([]int, 0, len(s))
	for line := range s {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}
