package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mvp-joe/codegrep/internal/analyzer"
	"github.com/mvp-joe/codegrep/internal/config"
	"github.com/mvp-joe/codegrep/internal/match"
	"github.com/mvp-joe/codegrep/internal/render"
)

var (
	ignoreCase   bool
	fixedStrings bool
	showProgress bool
)

func registerGrepFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolVarP(&ignoreCase, "ignore-case", "i", false, "match case-insensitively")
	flags.BoolVarP(&fixedStrings, "fixed-strings", "F", false, "treat PATTERN as a literal string")
	flags.BoolVar(&showProgress, "progress", false, "show a progress bar on stderr")

	flags.StringP("colors", "c", config.ColorNever, "colorize output: never, always or auto")
	flags.Lookup("colors").NoOptDefVal = config.ColorAlways
	flags.String("color", "red", "highlight color: black, red, green, yellow, blue, magenta, cyan, white")
	flags.BoolP("line-numbers", "n", false, "prefix lines with line numbers")

	flags.Int("padding", 1, "lines shown around each match")
	flags.Bool("parent-context", true, "show headers of enclosing scopes")
	flags.Bool("child-context", true, "summarize nested scopes starting on a matched line")
	flags.Bool("last-line", true, "always show the last line of the file")
	flags.Bool("top-scope", true, "show the header of a scope starting on line 1")
	flags.Int("header-max", 10, "maximum lines shown for a scope header")
	flags.Int("margin", 3, "lines always shown from the top of the file")

	flags.StringSlice("include", nil, "only search files matching these globs")
	flags.StringSlice("exclude", nil, "skip files matching these globs")
	flags.Bool("hidden", false, "search hidden files and directories")

	bindings := map[string]string{
		"display.colors":            "colors",
		"display.color":             "color",
		"display.line_numbers":      "line-numbers",
		"context.padding":           "padding",
		"context.parent_context":    "parent-context",
		"context.child_context":     "child-context",
		"context.last_line":         "last-line",
		"context.top_of_file_scope": "top-scope",
		"context.header_max_lines":  "header-max",
		"context.top_margin_lines":  "margin",
		"paths.include":             "include",
		"paths.exclude":             "exclude",
		"paths.hidden":              "hidden",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}
}

func runGrep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	roots := args[1:]
	if len(roots) == 0 {
		roots = []string{"."}
	}

	matched, err := grep(cmd.Context(), grepOptions{
		pattern:      args[0],
		roots:        roots,
		ignoreCase:   ignoreCase,
		fixedStrings: fixedStrings,
		verbose:      verbose,
		progress:     showProgress,
		colors:       colorsEnabled(cfg.Display.Colors, os.Stdout),
		cfg:          cfg,
		stdout:       cmd.OutOrStdout(),
		stderr:       cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if !matched {
		return errNoMatch
	}
	return nil
}

// colorsEnabled resolves a color mode against the output file.
func colorsEnabled(mode string, out *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorAuto:
		return out != nil && term.IsTerminal(int(out.Fd()))
	default:
		return false
	}
}

type grepOptions struct {
	pattern      string
	roots        []string
	ignoreCase   bool
	fixedStrings bool
	verbose      bool
	progress     bool
	colors       bool
	cfg          *config.Config
	stdout       io.Writer
	stderr       io.Writer
}

// grep searches the roots and writes every matching file with its context.
// Per-file problems are reported on stderr. They become the returned error
// only when nothing matched.
func grep(ctx context.Context, opts grepOptions) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	matcher, err := match.NewRegexMatcher(opts.pattern, match.Options{
		IgnoreCase:  opts.ignoreCase,
		FixedString: opts.fixedStrings,
	})
	if err != nil {
		return false, err
	}

	color, err := render.ParseColor(opts.cfg.Display.Color)
	if err != nil {
		return false, err
	}

	discovery, err := opts.cfg.Discovery()
	if err != nil {
		return false, err
	}

	var trace *log.Logger
	if opts.verbose {
		trace = log.New(opts.stderr, "", 0)
	}
	a := analyzer.New(nil, trace)

	failures := 0
	explicit := make(map[string]bool)
	var roots []string
	for _, root := range opts.roots {
		info, err := os.Stat(root)
		if err != nil {
			fmt.Fprintf(opts.stderr, "codegrep: %v\n", err)
			failures++
			continue
		}
		if !info.IsDir() {
			explicit[filepath.Clean(root)] = true
		}
		roots = append(roots, root)
	}

	found, err := discovery.Discover(ctx, roots)
	if err != nil {
		return false, err
	}

	paths := make([]string, 0, len(found))
	for _, path := range found {
		if a.Supports(path) {
			paths = append(paths, path)
			continue
		}
		if explicit[path] {
			fmt.Fprintf(opts.stderr, "codegrep: %s: unsupported language\n", path)
			failures++
		} else if opts.verbose {
			fmt.Fprintf(opts.stderr, "Skipping %s: unsupported language\n", path)
		}
	}

	progress := newSearchProgress(len(paths), opts.progress, opts.stderr)
	outcomes := analyzer.Search(ctx, a, paths, matcher, analyzer.SearchOptions{
		Extract:    opts.cfg.ExtractOptions(opts.verbose),
		OnFileDone: progress.OnFileDone,
	})
	progress.Finish()

	renderOpts := render.Options{
		Colors:              opts.colors,
		Color:               color,
		LineNumbers:         opts.cfg.Display.LineNumbers,
		MarkLinesOfInterest: opts.cfg.Display.MarkLinesOfInterest,
	}

	matched := false
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(opts.stderr, "codegrep: %v\n", o.Err)
			failures++
			continue
		}
		if !o.Result.HasMatches() {
			continue
		}
		matched = true
		fmt.Fprintln(opts.stdout, o.Path)
		fmt.Fprintln(opts.stdout, o.Result.Format(renderOpts))
		fmt.Fprintln(opts.stdout)
	}

	if opts.verbose {
		fmt.Fprintf(opts.stderr, "[TIMING] Searched %d files in %v\n", len(paths), time.Since(start))
	}

	if err := ctx.Err(); err != nil {
		return matched, err
	}
	if !matched && failures > 0 {
		return false, fmt.Errorf("%d paths could not be searched", failures)
	}
	return matched, nil
}
