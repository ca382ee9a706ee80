// Package extract grows a set of matched lines into the set of lines worth
// displaying: enclosing scope headers, summarized child scopes and padding.
package extract

import (
	"log"
	"sort"

	"github.com/mvp-joe/codegrep/internal/scope"
	"github.com/mvp-joe/codegrep/internal/syntax"
)

const (
	// smallScopeLines is the scope size below which a scope starting on a
	// line of interest is shown in full.
	smallScopeLines = 5

	childQuotaRatio = 0.10
	childQuotaMax   = 25
	childQuotaMin   = 5
)

// Options configures context extraction.
type Options struct {
	Padding              int
	IncludeParentContext bool
	IncludeChildContext  bool
	IncludeLastLine      bool
	ShowTopOfFileScope   bool
	HeaderMaxLines       int
	TopMarginLines       int
	Verbose              bool
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		Padding:              1,
		IncludeParentContext: true,
		IncludeChildContext:  true,
		IncludeLastLine:      true,
		ShowTopOfFileScope:   true,
		HeaderMaxLines:       10,
		TopMarginLines:       3,
	}
}

// Extractor computes display lines from a scope index. It holds no per-call
// state and may be used from multiple goroutines.
type Extractor struct {
	opts Options
}

// New creates an extractor with the given options.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Options returns the extractor's options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract returns the lines to display for linesOfInterest. The result always
// contains every line of interest inside the file and never a line outside
// it. Lines of interest outside the file are ignored.
func (e *Extractor) Extract(idx *scope.Index, linesOfInterest []int) LineSet {
	r := &run{
		opts:      e.opts,
		idx:       idx,
		lineCount: idx.LineCount(),
		show:      make(LineSet),
		processed: make(map[int]struct{}),
	}

	lois := r.validLines(linesOfInterest)
	if len(lois) == 0 {
		return r.show
	}

	for _, line := range lois {
		r.show.Add(line)
	}
	r.addPadding(lois)

	if r.opts.IncludeLastLine {
		last := r.lineCount - 1
		r.show.Add(last)
		if r.opts.IncludeParentContext {
			r.addParentContext(last, nil)
		}
	}

	if r.opts.IncludeParentContext {
		for _, line := range lois {
			r.addParentContext(line, nil)
		}
	}

	if r.opts.IncludeChildContext {
		for _, line := range lois {
			r.addChildContext(line)
		}
	}

	if r.opts.TopMarginLines > 0 {
		r.show.AddRange(0, min(r.opts.TopMarginLines, r.lineCount)-1)
	}

	r.closeGaps()

	if r.opts.Verbose {
		log.Printf("[ContextExtractor] Lines of interest: %v", lois)
		log.Printf("[ContextExtractor] Final lines to show: %v", r.show.Sorted())
	}

	return r.show
}

// run is the state of a single Extract call.
type run struct {
	opts      Options
	idx       *scope.Index
	lineCount int
	show      LineSet

	// processed holds lines whose parent context was already added.
	processed map[int]struct{}
}

// budget caps the number of lines a child expansion may add.
type budget struct {
	limit float64
	used  int
}

func (b *budget) exhausted() bool {
	return float64(b.used+1) > b.limit
}

func childQuota(scopeSize int) float64 {
	return max(min(float64(scopeSize)*childQuotaRatio, childQuotaMax), childQuotaMin)
}

func (r *run) validLines(lines []int) []int {
	seen := make(map[int]struct{}, len(lines))
	valid := make([]int, 0, len(lines))
	for _, line := range lines {
		if line < 0 || line >= r.lineCount {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		valid = append(valid, line)
	}
	sort.Ints(valid)
	return valid
}

func (r *run) addPadding(lois []int) {
	pad := max(r.opts.Padding, 0)
	for _, line := range lois {
		r.show.AddRange(max(line-pad, 0), min(line+pad, r.lineCount-1))
	}
}

// addParentContext adds the header lines of every scope containing line.
// Lines are added in ascending order and stop once b is exhausted; a nil
// budget is unlimited.
func (r *run) addParentContext(line int, b *budget) {
	if _, done := r.processed[line]; done {
		return
	}
	r.processed[line] = struct{}{}

	for _, start := range r.idx.Scopes(line) {
		headers := r.idx.Headers(start)
		if len(headers) == 0 {
			continue
		}

		// Nested scopes sharing a start line are shadowed by the first
		// registered (outermost) header.
		h := headers[0]
		if h.StartLine == 0 && !r.opts.ShowTopOfFileScope {
			continue
		}

		end := min(h.EndLine, h.StartLine+r.opts.HeaderMaxLines, r.lineCount-1)
		for l := h.StartLine; l <= end; l++ {
			if b != nil && b.exhausted() {
				return
			}
			if r.show.Add(l) && b != nil {
				b.used++
			}
		}
	}
}

// addChildContext shows small scopes starting on line in full and, for large
// ones, the headers of their largest nested scopes within a quota.
func (r *run) addChildContext(line int) {
	nodes := r.idx.Nodes(line)
	if len(nodes) == 0 {
		return
	}

	tree := r.idx.Tree()
	last := line
	for _, id := range nodes {
		last = max(last, tree.Node(id).EndLine)
	}
	size := last - line

	if size < smallScopeLines {
		r.show.AddRange(line, min(last, r.lineCount-1))
		return
	}

	children := r.collectChildren(tree, nodes)
	sort.SliceStable(children, func(i, j int) bool {
		return tree.Node(children[i]).Span() > tree.Node(children[j]).Span()
	})

	b := &budget{limit: childQuota(size)}
	for _, child := range children {
		if b.exhausted() {
			break
		}
		r.addParentContext(tree.Node(child).StartLine, b)
	}
}

// collectChildren flattens the subtrees rooted at nodes in pre-order,
// dropping nodes reachable from more than one root.
func (r *run) collectChildren(tree *syntax.Tree, nodes []syntax.NodeID) []syntax.NodeID {
	seen := make(map[syntax.NodeID]struct{})
	var out []syntax.NodeID
	for _, id := range nodes {
		for _, n := range tree.Descendants(id) {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// closeGaps fills single-line holes between kept lines.
func (r *run) closeGaps() {
	lines := r.show.Sorted()
	for i := 0; i+1 < len(lines); i++ {
		if lines[i+1]-lines[i] == 2 {
			r.show.Add(lines[i] + 1)
		}
	}
}
