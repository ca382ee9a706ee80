// Package scope builds per-line scope metadata from a syntax tree.
//
// An Index answers three questions about every line of a file: which scopes
// contain it, which multi-line scopes start on it, and which nodes start on
// it. It is built in a single pre-order pass and never modified afterwards,
// so one Index can be shared by concurrent readers.
package scope

import (
	"log"
	"sort"
	"strings"

	"github.com/mvp-joe/codegrep/internal/syntax"
)

// Header describes a scope that spans more than one line.
type Header struct {
	StartLine int
	EndLine   int
	Size      int
}

// Index holds the per-line registries for one file.
type Index struct {
	tree         *syntax.Tree
	scopesByLine []map[int]struct{}
	headers      [][]Header
	nodes        [][]syntax.NodeID
}

// Build indexes tree for a file with lineCount lines.
func Build(tree *syntax.Tree, lineCount int) *Index {
	return BuildWithTrace(tree, lineCount, nil)
}

// BuildWithTrace is Build that also writes one line per named node to
// logger. A nil logger disables tracing.
func BuildWithTrace(tree *syntax.Tree, lineCount int, logger *log.Logger) *Index {
	if lineCount < 0 {
		lineCount = 0
	}

	idx := &Index{
		tree:         tree,
		scopesByLine: make([]map[int]struct{}, lineCount),
		headers:      make([][]Header, lineCount),
		nodes:        make([][]syntax.NodeID, lineCount),
	}
	for i := range idx.scopesByLine {
		idx.scopesByLine[i] = make(map[int]struct{})
	}

	if logger != nil {
		logger.Printf("Indexing %d lines (%d nodes)", lineCount, tree.Len())
	}

	tree.Walk(tree.Root(), func(id syntax.NodeID, depth int) bool {
		idx.record(id)
		if logger != nil {
			trace(logger, tree, id, depth)
		}
		return true
	})

	return idx
}

func (idx *Index) record(id syntax.NodeID) {
	n := idx.tree.Node(id)
	start, end := n.StartLine, n.EndLine
	if start < 0 || start >= len(idx.nodes) {
		return
	}

	idx.nodes[start] = append(idx.nodes[start], id)

	if end > start {
		idx.headers[start] = append(idx.headers[start], Header{
			StartLine: start,
			EndLine:   end,
			Size:      end - start,
		})
	}

	last := min(end, len(idx.scopesByLine)-1)
	for i := start; i <= last; i++ {
		idx.scopesByLine[i][start] = struct{}{}
	}
}

func trace(logger *log.Logger, tree *syntax.Tree, id syntax.NodeID, depth int) {
	n := tree.Node(id)
	if !n.Named {
		return
	}
	logger.Printf("%s%s %d-%d (%d lines) %s",
		strings.Repeat("   ", depth), n.Kind, n.StartLine, n.EndLine, n.Span()+1, tree.Snippet(id))
}

// LineCount returns the number of lines the index covers.
func (idx *Index) LineCount() int {
	return len(idx.scopesByLine)
}

// Tree returns the tree the index was built from.
func (idx *Index) Tree() *syntax.Tree {
	return idx.tree
}

// Scopes returns the start lines of every scope containing line, ascending.
func (idx *Index) Scopes(line int) []int {
	if line < 0 || line >= len(idx.scopesByLine) {
		return nil
	}
	starts := make([]int, 0, len(idx.scopesByLine[line]))
	for start := range idx.scopesByLine[line] {
		starts = append(starts, start)
	}
	sort.Ints(starts)
	return starts
}

// Headers returns the multi-line scopes starting at line in traversal order:
// outer scopes come before nested scopes that start on the same line.
func (idx *Index) Headers(line int) []Header {
	if line < 0 || line >= len(idx.headers) {
		return nil
	}
	return idx.headers[line]
}

// Nodes returns the nodes starting at line in traversal order.
func (idx *Index) Nodes(line int) []syntax.NodeID {
	if line < 0 || line >= len(idx.nodes) {
		return nil
	}
	return idx.nodes[line]
}
