// Package match finds lines of interest with regular expressions.
package match

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern indicates a pattern that does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// Span is a half-open byte range [Start, End) within a line.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LineMatch holds the spans matched on one 0-based line.
type LineMatch struct {
	Line  int    `json:"line"`
	Spans []Span `json:"spans"`
}

// Result is the outcome of matching a pattern against a file.
type Result struct {
	Pattern string      `json:"pattern"`
	Matches []LineMatch `json:"matches"`
}

// Lines returns the matched line numbers in ascending order.
func (r *Result) Lines() []int {
	lines := make([]int, len(r.Matches))
	for i, m := range r.Matches {
		lines[i] = m.Line
	}
	return lines
}

// Spans returns the matched spans keyed by line.
func (r *Result) Spans() map[int][]Span {
	spans := make(map[int][]Span, len(r.Matches))
	for _, m := range r.Matches {
		spans[m.Line] = m.Spans
	}
	return spans
}

// Matcher finds lines of interest.
type Matcher interface {
	Match(lines []string) *Result
}

// Options configures a RegexMatcher.
type Options struct {
	IgnoreCase  bool
	FixedString bool
}

// RegexMatcher matches a regular expression line by line.
type RegexMatcher struct {
	pattern string
	re      *regexp.Regexp
}

// NewRegexMatcher compiles pattern. With FixedString the pattern is matched
// literally.
func NewRegexMatcher(pattern string, opts Options) (*RegexMatcher, error) {
	expr := pattern
	if opts.FixedString {
		expr = regexp.QuoteMeta(expr)
	}
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return &RegexMatcher{pattern: pattern, re: re}, nil
}

// Match returns every line with at least one non-empty match.
func (m *RegexMatcher) Match(lines []string) *Result {
	result := &Result{Pattern: m.pattern, Matches: []LineMatch{}}
	for i, line := range lines {
		var spans []Span
		for _, loc := range m.re.FindAllStringIndex(line, -1) {
			if loc[0] == loc[1] {
				continue
			}
			spans = append(spans, Span{Start: loc[0], End: loc[1]})
		}
		if len(spans) > 0 {
			result.Matches = append(result.Matches, LineMatch{Line: i, Spans: spans})
		}
	}
	return result
}
