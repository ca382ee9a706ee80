// Package render formats display lines for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/codegrep/internal/extract"
)

const (
	gapMarker      = "⋮"
	interestMarker = "█"
	contextMarker  = "│"
)

// Options configures a Formatter.
type Options struct {
	Colors              bool
	Color               Color
	LineNumbers         bool
	MarkLinesOfInterest bool
}

// DefaultOptions returns plain output marking lines of interest.
func DefaultOptions() Options {
	return Options{
		Color:               Red,
		MarkLinesOfInterest: true,
	}
}

// Line is one source line prepared for display.
type Line struct {
	Number      int
	Content     string
	Highlighted string
	OfInterest  bool
}

// text returns the highlighted content when present.
func (l Line) text() string {
	if l.Highlighted != "" {
		return l.Highlighted
	}
	return l.Content
}

// Formatter renders the selected lines of a file with gap markers.
type Formatter struct {
	opts Options
}

// NewFormatter creates a formatter.
func NewFormatter(opts Options) *Formatter {
	return &Formatter{opts: opts}
}

// Format renders the lines in show in ascending order. A gap marker
// precedes every run of lines that does not continue the previous one.
func (f *Formatter) Format(show extract.LineSet, lines []Line) string {
	if show.Len() == 0 || len(lines) == 0 {
		return ""
	}

	var out []string
	if f.opts.Colors {
		out = append(out, foregroundReset)
	}

	lastShown := -1
	for _, n := range show.Sorted() {
		if n < 0 || n >= len(lines) {
			continue
		}
		if n > lastShown+1 {
			if f.opts.LineNumbers {
				out = append(out, "   "+gapMarker)
			} else {
				out = append(out, gapMarker)
			}
		}
		out = append(out, f.formatLine(lines[n]))
		lastShown = n
	}

	if f.opts.Colors {
		out = append(out, foregroundReset)
	}
	return strings.Join(out, "\n")
}

func (f *Formatter) formatLine(l Line) string {
	content := l.Content
	if f.opts.Colors {
		content = l.text()
	}
	formatted := f.marker(l) + " " + content
	if f.opts.LineNumbers {
		formatted = fmt.Sprintf("%3d %s", l.Number+1, formatted)
	}
	return formatted
}

func (f *Formatter) marker(l Line) string {
	if !l.OfInterest || !f.opts.MarkLinesOfInterest {
		return contextMarker
	}
	if f.opts.Colors {
		return f.opts.Color.Foreground() + interestMarker + foregroundReset
	}
	return interestMarker
}
