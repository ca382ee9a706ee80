package extract

import (
	"sync"
	"testing"

	"github.com/mvp-joe/codegrep/internal/scope"
	"github.com/mvp-joe/codegrep/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Extractor:
// - Empty lines of interest produce an empty set
// - Results contain every line of interest and stay inside the file
// - Padding is clamped to the file bounds
// - Parent context adds truncated headers of every enclosing scope
// - Headers of scopes starting on line 0 are hidden unless ShowTopOfFileScope
// - The first registered header wins when scopes share a start line
// - Small scopes starting on a line of interest are shown in full
// - Child expansion of a large scope stops at the quota
// - The trailing anchor adds the last line and its parent context
// - Top margin is clamped to the file
// - Gap closing fills single-line holes only
// - The 20-line class/method scenario yields an exact set
// - Extract does not modify the index and is safe for concurrent calls

// quiet disables every expansion so tests can enable one at a time.
func quiet() Options {
	return Options{HeaderMaxLines: 10}
}

// flatIndex indexes a file of n lines whose only node is the root.
func flatIndex(n int) *scope.Index {
	b := syntax.NewBuilder(nil)
	b.Add(syntax.NoNode, syntax.Node{Kind: "module", StartLine: 0, EndLine: n - 1})
	return scope.Build(b.Build(), n)
}

// classIndex models a 20-line file:
//
//	0-19  class (header on lines 0-1)
//	5-9   method
//	6, 7, 8 statements
func classIndex() *scope.Index {
	b := syntax.NewBuilder(nil)
	root := b.Add(syntax.NoNode, syntax.Node{Kind: "module", StartLine: 0, EndLine: 19})
	class := b.Add(root, syntax.Node{Kind: "class", StartLine: 0, EndLine: 19})
	b.Add(class, syntax.Node{Kind: "identifier", StartLine: 0, EndLine: 0})
	method := b.Add(class, syntax.Node{Kind: "method", StartLine: 5, EndLine: 9})
	for line := 6; line <= 8; line++ {
		b.Add(method, syntax.Node{Kind: "statement", StartLine: line, EndLine: line})
	}
	return scope.Build(b.Build(), 20)
}

// largeClassIndex models a 301-line class with 15 methods of 20 lines each.
func largeClassIndex() *scope.Index {
	b := syntax.NewBuilder(nil)
	root := b.Add(syntax.NoNode, syntax.Node{Kind: "module", StartLine: 0, EndLine: 300})
	class := b.Add(root, syntax.Node{Kind: "class", StartLine: 0, EndLine: 300})
	for start := 1; start < 300; start += 20 {
		m := b.Add(class, syntax.Node{Kind: "method", StartLine: start, EndLine: start + 19})
		b.Add(m, syntax.Node{Kind: "statement", StartLine: start + 1, EndLine: start + 1})
	}
	return scope.Build(b.Build(), 301)
}

func rangeSet(from, to int) LineSet {
	s := make(LineSet)
	s.AddRange(from, to)
	return s
}

func union(sets ...LineSet) LineSet {
	out := make(LineSet)
	for _, s := range sets {
		for line := range s {
			out.Add(line)
		}
	}
	return out
}

func TestExtract_EmptyLinesOfInterest(t *testing.T) {
	t.Parallel()

	for _, idx := range []*scope.Index{classIndex(), flatIndex(3), largeClassIndex()} {
		got := New(DefaultOptions()).Extract(idx, nil)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	}
}

func TestExtract_SupersetAndBounded(t *testing.T) {
	t.Parallel()

	indexes := map[string]*scope.Index{
		"class": classIndex(),
		"flat":  flatIndex(12),
		"large": largeClassIndex(),
	}
	inputs := [][]int{{0}, {7}, {0, 11}, {2, 3, 4}, {11, 11}}
	options := []Options{DefaultOptions(), quiet(), {Padding: 50, TopMarginLines: 500, HeaderMaxLines: 1000, IncludeParentContext: true, IncludeChildContext: true, IncludeLastLine: true, ShowTopOfFileScope: true}}

	for name, idx := range indexes {
		for _, opts := range options {
			for _, lois := range inputs {
				got := New(opts).Extract(idx, lois)
				for _, line := range lois {
					assert.True(t, got.Has(line), "%s: line of interest %d missing", name, line)
				}
				for line := range got {
					assert.GreaterOrEqual(t, line, 0, name)
					assert.Less(t, line, idx.LineCount(), name)
				}
			}
		}
	}
}

func TestExtract_IgnoresLinesOutsideFile(t *testing.T) {
	t.Parallel()

	got := New(DefaultOptions()).Extract(flatIndex(5), []int{-1, 5, 100})
	assert.Empty(t, got)
}

func TestExtract_PaddingClamped(t *testing.T) {
	t.Parallel()

	opts := quiet()
	opts.Padding = 2

	got := New(opts).Extract(flatIndex(10), []int{0, 9})
	assert.Equal(t, NewLineSet(0, 1, 2, 7, 8, 9), got)
}

func TestExtract_HeaderTruncation(t *testing.T) {
	t.Parallel()

	// A 40-line scope at 5-44 inside a 60-line file.
	b := syntax.NewBuilder(nil)
	root := b.Add(syntax.NoNode, syntax.Node{StartLine: 0, EndLine: 59})
	b.Add(root, syntax.Node{StartLine: 5, EndLine: 44})
	idx := scope.Build(b.Build(), 60)

	opts := quiet()
	opts.IncludeParentContext = true
	opts.HeaderMaxLines = 10

	got := New(opts).Extract(idx, []int{30})
	assert.Equal(t, union(rangeSet(5, 15), NewLineSet(30)), got)
}

func TestExtract_TopOfFileScope(t *testing.T) {
	t.Parallel()

	opts := quiet()
	opts.IncludeParentContext = true
	opts.HeaderMaxLines = 2

	opts.ShowTopOfFileScope = true
	shown := New(opts).Extract(flatIndex(10), []int{6})
	assert.Equal(t, NewLineSet(0, 1, 2, 6), shown)

	opts.ShowTopOfFileScope = false
	hidden := New(opts).Extract(flatIndex(10), []int{6})
	assert.Equal(t, NewLineSet(6), hidden)
}

func TestExtract_FirstHeaderWinsOnSharedStartLine(t *testing.T) {
	t.Parallel()

	// outer 2-30 and inner 2-3 both start on line 2; outer is registered
	// first so its longer header is used for every line inside either scope.
	b := syntax.NewBuilder(nil)
	root := b.Add(syntax.NoNode, syntax.Node{StartLine: 0, EndLine: 39})
	outer := b.Add(root, syntax.Node{StartLine: 2, EndLine: 30})
	b.Add(outer, syntax.Node{StartLine: 2, EndLine: 3})
	idx := scope.Build(b.Build(), 40)

	opts := quiet()
	opts.IncludeParentContext = true

	got := New(opts).Extract(idx, []int{3})
	assert.Equal(t, rangeSet(2, 12), got)
}

func TestExtract_SmallScopeShownInFull(t *testing.T) {
	t.Parallel()

	b := syntax.NewBuilder(nil)
	root := b.Add(syntax.NoNode, syntax.Node{StartLine: 0, EndLine: 29})
	b.Add(root, syntax.Node{StartLine: 10, EndLine: 13})
	idx := scope.Build(b.Build(), 30)

	opts := quiet()
	opts.IncludeChildContext = true
	opts.HeaderMaxLines = 0

	got := New(opts).Extract(idx, []int{10})
	assert.Equal(t, rangeSet(10, 13), got)
}

func TestExtract_ChildQuota(t *testing.T) {
	t.Parallel()

	idx := largeClassIndex()

	opts := quiet()
	opts.IncludeChildContext = true
	opts.ShowTopOfFileScope = true

	got := New(opts).Extract(idx, []int{0})

	// The class header fills lines 1-10, the first method header adds 11,
	// the second adds 21-31 and the third is cut off after 41-43. The quota
	// is checked per line, so a header can be cut partway.
	want := union(rangeSet(0, 11), rangeSet(21, 31), rangeSet(41, 43))
	assert.Equal(t, want, got)
	assert.Equal(t, 25, got.Len()-1, "child expansion is capped at 25 new lines")
}

func TestChildQuota(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5.0, childQuota(5))
	assert.Equal(t, 5.0, childQuota(40))
	assert.InDelta(t, 12.0, childQuota(120), 1e-9)
	assert.Equal(t, 25.0, childQuota(200*10))
}

func TestExtract_TrailingAnchor(t *testing.T) {
	t.Parallel()

	opts := quiet()
	opts.IncludeLastLine = true
	got := New(opts).Extract(flatIndex(10), []int{2})
	assert.Equal(t, NewLineSet(2, 9), got)

	opts.IncludeParentContext = true
	opts.HeaderMaxLines = 1
	withParent := New(opts).Extract(flatIndex(10), []int{5})
	assert.Equal(t, NewLineSet(5, 9), withParent, "root header hidden without top-of-file scope")

	opts.ShowTopOfFileScope = true
	withParent = New(opts).Extract(flatIndex(10), []int{5})
	assert.Equal(t, NewLineSet(0, 1, 5, 9), withParent)
}

func TestExtract_TopMarginClamped(t *testing.T) {
	t.Parallel()

	opts := quiet()
	opts.TopMarginLines = 10
	got := New(opts).Extract(flatIndex(5), []int{4})
	assert.Equal(t, rangeSet(0, 4), got)

	opts.TopMarginLines = 2
	assert.Equal(t, NewLineSet(0, 1, 8), New(opts).Extract(flatIndex(20), []int{8}))
}

func TestExtract_GapClosing(t *testing.T) {
	t.Parallel()

	extractor := New(quiet())
	idx := flatIndex(20)

	assert.Equal(t, NewLineSet(5, 6, 7), extractor.Extract(idx, []int{5, 7}))
	assert.Equal(t, NewLineSet(5, 8), extractor.Extract(idx, []int{5, 8}))
	assert.Equal(t, NewLineSet(1, 2, 3, 4, 5), extractor.Extract(idx, []int{1, 3, 5}))
}

func TestExtract_ClassMethodScenario(t *testing.T) {
	t.Parallel()

	opts := Options{
		Padding:              1,
		IncludeParentContext: true,
		HeaderMaxLines:       10,
		ShowTopOfFileScope:   true,
		TopMarginLines:       0,
	}

	got := New(opts).Extract(classIndex(), []int{7})
	// Class header 0-10 (truncated at header max), method header 5-9,
	// padding 6-8.
	assert.Equal(t, rangeSet(0, 10), got)

	opts.HeaderMaxLines = 1
	got = New(opts).Extract(classIndex(), []int{7})
	assert.Equal(t, NewLineSet(0, 1, 5, 6, 7, 8), got)

	opts.IncludeLastLine = true
	got = New(opts).Extract(classIndex(), []int{7})
	assert.Equal(t, NewLineSet(0, 1, 5, 6, 7, 8, 19), got)
}

func TestExtract_DefaultOptionsOnClass(t *testing.T) {
	t.Parallel()

	got := New(DefaultOptions()).Extract(classIndex(), []int{5})

	// Method 5-9 is small and shown in full; class header 0-10 and the top
	// margin overlap; the last line is anchored.
	assert.Equal(t, union(rangeSet(0, 10), NewLineSet(19)), got)
}

func TestExtract_DoesNotModifyIndex(t *testing.T) {
	t.Parallel()

	idx := largeClassIndex()
	fresh := largeClassIndex()

	New(DefaultOptions()).Extract(idx, []int{0, 50, 150})
	assert.Equal(t, fresh.LineCount(), idx.LineCount())
	for line := 0; line < idx.LineCount(); line++ {
		require.Equal(t, fresh.Scopes(line), idx.Scopes(line))
		require.Equal(t, fresh.Headers(line), idx.Headers(line))
		require.Equal(t, fresh.Nodes(line), idx.Nodes(line))
	}
}

func TestExtract_ConcurrentCalls(t *testing.T) {
	t.Parallel()

	idx := largeClassIndex()
	extractor := New(DefaultOptions())
	want := extractor.Extract(idx, []int{0, 42, 200})

	var wg sync.WaitGroup
	results := make([]LineSet, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = extractor.Extract(idx, []int{200, 42, 0})
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestLineSet(t *testing.T) {
	t.Parallel()

	s := NewLineSet(3, 1)
	assert.True(t, s.Add(2))
	assert.False(t, s.Add(2))
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(4))
	s.AddRange(5, 6)
	assert.Equal(t, []int{1, 2, 3, 5, 6}, s.Sorted())
	assert.Equal(t, 5, s.Len())
}
