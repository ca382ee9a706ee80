package render

import (
	"sort"
	"strings"

	"github.com/mvp-joe/codegrep/internal/match"
)

// Highlighter wraps matched spans in an ANSI background color.
type Highlighter struct {
	color Color
}

// NewHighlighter creates a highlighter for color.
func NewHighlighter(color Color) *Highlighter {
	return &Highlighter{color: color}
}

// Highlight returns text with every span highlighted. Spans are clamped to
// the text and overlapping parts are highlighted once.
func (h *Highlighter) Highlight(text string, spans []match.Span) string {
	if len(spans) == 0 {
		return text
	}

	clamped := make([]match.Span, 0, len(spans))
	for _, s := range spans {
		start := min(max(s.Start, 0), len(text))
		end := min(max(s.End, 0), len(text))
		if start < end {
			clamped = append(clamped, match.Span{Start: start, End: end})
		}
	}
	sort.Slice(clamped, func(i, j int) bool { return clamped[i].Start < clamped[j].Start })

	var sb strings.Builder
	pos := 0
	for _, s := range clamped {
		if s.End <= pos {
			continue
		}
		start := max(s.Start, pos)
		sb.WriteString(text[pos:start])
		sb.WriteString(h.color.Background())
		sb.WriteString(text[start:s.End])
		sb.WriteString(backgroundReset)
		pos = s.End
	}
	sb.WriteString(text[pos:])
	return sb.String()
}
