package analyzer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/codegrep/internal/extract"
	"github.com/mvp-joe/codegrep/internal/match"
)

// FileLoader returns the analysis of the file at path.
type FileLoader interface {
	Get(ctx context.Context, path string) (*File, error)
}

// Get analyzes path without caching.
func (a *Analyzer) Get(ctx context.Context, path string) (*File, error) {
	return a.AnalyzePath(ctx, path)
}

// SearchOptions configures Search.
type SearchOptions struct {
	Extract extract.Options
	Workers int // defaults to runtime.NumCPU()

	// OnFileDone is called once per path, possibly from several goroutines.
	OnFileDone func(path string)
}

// Outcome is the result of searching one file. Exactly one of Result and Err
// is set.
type Outcome struct {
	Path   string
	Result *Result
	Err    error
}

// Search greps every path concurrently. Outcomes keep the order of paths.
func Search(ctx context.Context, loader FileLoader, paths []string, m match.Matcher, opts SearchOptions) []Outcome {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]Outcome, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			outcomes[i] = searchFile(ctx, loader, path, m, opts.Extract)
			if opts.OnFileDone != nil {
				opts.OnFileDone(path)
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func searchFile(ctx context.Context, loader FileLoader, path string, m match.Matcher, opts extract.Options) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Path: path, Err: err}
	}

	f, err := loader.Get(ctx, path)
	if err != nil {
		return Outcome{Path: path, Err: err}
	}
	return Outcome{Path: path, Result: f.Grep(m, opts)}
}
