// Package files discovers and reads the source files to search.
package files

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/boyter/gocodewalker"
	"github.com/gobwas/glob"
)

// ErrInvalidGlob indicates an include or exclude pattern that does not compile.
var ErrInvalidGlob = errors.New("invalid glob pattern")

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks directory trees honoring .gitignore and .ignore files and
// filters the results with include and exclude globs.
type Discovery struct {
	include []compiledPattern
	exclude []compiledPattern

	// IncludeHidden yields dot files and dot directories.
	IncludeHidden bool
}

// NewDiscovery compiles the include and exclude patterns. An empty include
// list accepts every file.
func NewDiscovery(include, exclude []string) (*Discovery, error) {
	d := &Discovery{}

	var err error
	if d.include, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if d.exclude, err = compilePatterns(exclude); err != nil {
		return nil, err
	}
	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidGlob, pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Discover returns the files under roots, sorted and de-duplicated. Roots that
// name a file are returned as is, without glob or ignore filtering.
func (d *Discovery) Discover(ctx context.Context, roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	var result []string
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		result = append(result, path)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		found, err := d.walk(ctx, root)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			add(path)
		}
	}

	sort.Strings(result)
	return result, nil
}

// walk lists the accepted files below root.
func (d *Discovery) walk(ctx context.Context, root string) ([]string, error) {
	fileListQueue := make(chan *gocodewalker.File, 100)

	walker := gocodewalker.NewFileWalker(root, fileListQueue)
	walker.IncludeHidden = d.IncludeHidden
	walker.ExcludeDirectory = []string{".git", ".codegrep"}

	errChan := make(chan error, 1)
	go func() {
		errChan <- walker.Start()
		close(errChan)
	}()

	var files []string
	terminated := false
	for f := range fileListQueue {
		if ctx.Err() != nil {
			if !terminated {
				walker.Terminate()
				terminated = true
			}
			continue
		}

		relPath, err := filepath.Rel(root, f.Location)
		if err != nil {
			continue
		}
		if d.accepts(filepath.ToSlash(relPath)) {
			files = append(files, f.Location)
		}
	}

	if err := <-errChan; err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// accepts reports whether a slash-separated path relative to the walk root
// passes the include and exclude patterns.
func (d *Discovery) accepts(relPath string) bool {
	if matchesAnyPattern(relPath, d.exclude) || matchesAnyPattern(relPath+"/**", d.exclude) {
		return false
	}
	if len(d.include) == 0 {
		return true
	}
	return matchesAnyPattern(relPath, d.include)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A pattern like "**/*.py" also matches "main.py" at the root.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/')
			if err == nil && simplified.Match(path) {
				return true
			}
		}
	}

	return false
}
