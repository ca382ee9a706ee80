// Package analyzer runs the parse, index, match and extract pipeline for a
// single file.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mvp-joe/codegrep/internal/extract"
	"github.com/mvp-joe/codegrep/internal/files"
	"github.com/mvp-joe/codegrep/internal/match"
	"github.com/mvp-joe/codegrep/internal/render"
	"github.com/mvp-joe/codegrep/internal/scope"
	"github.com/mvp-joe/codegrep/internal/syntax"
)

// Analyzer parses files and builds their scope index.
type Analyzer struct {
	parser *syntax.Parser
	trace  *log.Logger
}

// New creates an analyzer. A non-nil trace logger receives the indexer trace
// and timing lines for every analyzed file.
func New(parser *syntax.Parser, trace *log.Logger) *Analyzer {
	if parser == nil {
		parser = syntax.NewParser()
	}
	return &Analyzer{parser: parser, trace: trace}
}

// Supports reports whether files at path can be analyzed.
func (a *Analyzer) Supports(path string) bool {
	return a.parser.Supports(syntax.DetectLanguage(path))
}

// AnalyzePath reads and analyzes the file at path.
func (a *Analyzer) AnalyzePath(ctx context.Context, path string) (*File, error) {
	if lang := syntax.DetectLanguage(path); !a.parser.Supports(lang) {
		return nil, fmt.Errorf("%s: %w: %s", path, syntax.ErrUnsupportedLanguage, lang)
	}

	src, err := files.ReadSource(path)
	if err != nil {
		return nil, err
	}
	return a.analyze(ctx, src)
}

// Analyze analyzes content as if read from path.
func (a *Analyzer) Analyze(ctx context.Context, path string, content []byte) (*File, error) {
	src, err := files.NewSource(path, content)
	if err != nil {
		return nil, err
	}
	return a.analyze(ctx, src)
}

func (a *Analyzer) analyze(ctx context.Context, src *files.Source) (*File, error) {
	start := time.Now()

	tree, err := a.parser.Parse(ctx, src.Language, src.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}

	var idx *scope.Index
	if a.trace != nil {
		idx = scope.BuildWithTrace(tree, len(src.Lines), a.trace)
		a.trace.Printf("[TIMING] Analyzed %s in %v", src.Path, time.Since(start))
	} else {
		idx = scope.Build(tree, len(src.Lines))
	}

	return &File{Source: src, Index: idx}, nil
}

// File is an analyzed file. It is immutable and safe for concurrent use.
type File struct {
	Source *files.Source
	Index  *scope.Index
}

// Path returns the path the file was read from.
func (f *File) Path() string {
	return f.Source.Path
}

// Grep matches the file and extracts the context of every matched line.
func (f *File) Grep(m match.Matcher, opts extract.Options) *Result {
	matched := m.Match(f.Source.Lines)
	if len(matched.Matches) == 0 {
		return &Result{File: f, Match: matched, Display: extract.NewLineSet()}
	}

	return &Result{
		File:    f,
		Match:   matched,
		Display: extract.New(opts).Extract(f.Index, matched.Lines()),
	}
}

// Result is the outcome of grepping one file.
type Result struct {
	File    *File
	Match   *match.Result
	Display extract.LineSet
}

// HasMatches reports whether any line matched.
func (r *Result) HasMatches() bool {
	return len(r.Match.Matches) > 0
}

// Format renders the display lines with matched spans highlighted.
func (r *Result) Format(opts render.Options) string {
	spans := r.Match.Spans()
	highlighter := render.NewHighlighter(opts.Color)

	lines := make([]render.Line, len(r.File.Source.Lines))
	for i, content := range r.File.Source.Lines {
		line := render.Line{Number: i, Content: content}
		if s, ok := spans[i]; ok {
			line.OfInterest = true
			if opts.Colors {
				line.Highlighted = highlighter.Highlight(content, s)
			}
		}
		lines[i] = line
	}

	return render.NewFormatter(opts).Format(r.Display, lines)
}
