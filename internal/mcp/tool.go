package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/codegrep/internal/analyzer"
	"github.com/mvp-joe/codegrep/internal/config"
	"github.com/mvp-joe/codegrep/internal/extract"
	"github.com/mvp-joe/codegrep/internal/match"
	"github.com/mvp-joe/codegrep/internal/render"
)

// SearchToolName is the name of the registered tool.
const SearchToolName = "codegrep_search"

// SearchResponse is the JSON payload returned by codegrep_search.
type SearchResponse struct {
	Matches    []FileMatch `json:"matches"`
	TotalFiles int         `json:"total_files"`
	Truncated  bool        `json:"truncated"`
	TookMs     int64       `json:"took_ms"`
	Errors     []FileError `json:"errors,omitempty"`
}

// FileMatch is the rendered context of one matching file.
type FileMatch struct {
	File   string `json:"file"`
	Lines  []int  `json:"lines"` // 1-based matched lines
	Output string `json:"output"`
}

// FileError reports a file that could not be searched.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// AddSearchTool registers the codegrep_search tool with an MCP server.
func AddSearchTool(s *server.MCPServer, searcher *Searcher) {
	tool := mcp.NewTool(
		SearchToolName,
		mcp.WithDescription("Search source files with a regular expression and return every match inside its syntactic context: enclosing class and function headers, nearby child scopes and padding lines."),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Regular expression (RE2 syntax) matched against each line")),
		mcp.WithArray("paths",
			mcp.Description("Files or directories to search, relative to the project root (default: the whole project)")),
		mcp.WithBoolean("ignore_case",
			mcp.Description("Match case-insensitively")),
		mcp.WithBoolean("fixed_strings",
			mcp.Description("Treat the pattern as a literal string")),
		mcp.WithNumber("padding",
			mcp.Description("Lines shown around each match (default: 1)")),
		mcp.WithNumber("header_max_lines",
			mcp.Description("Maximum lines shown for an enclosing scope header (default: 10)")),
		mcp.WithBoolean("parent_context",
			mcp.Description("Show headers of enclosing scopes (default: true)")),
		mcp.WithBoolean("child_context",
			mcp.Description("Summarize nested scopes that start on a matched line (default: true)")),
		mcp.WithBoolean("line_numbers",
			mcp.Description("Prefix output lines with 1-based line numbers")),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of files to return (1-%d, default: 50)", config.MaxFilesLimit))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchHandler(searcher))
}

// createSearchHandler creates the handler function for the codegrep_search tool.
func createSearchHandler(searcher *Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req SearchRequest
		if err := coerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		if req.Pattern == "" {
			return mcp.NewToolResultError("pattern parameter is required"), nil
		}

		response, err := searcher.Search(ctx, &req)
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		return marshalToolResponse(response)
	}
}

// Searcher runs codegrep_search requests against a project.
type Searcher struct {
	projectRoot string
	cfg         *config.Config
	cache       *analyzer.Cache
	analyzer    *analyzer.Analyzer
}

// NewSearcher creates a searcher for the project at projectRoot.
func NewSearcher(projectRoot string, cfg *config.Config, a *analyzer.Analyzer, cache *analyzer.Cache) *Searcher {
	return &Searcher{
		projectRoot: projectRoot,
		cfg:         cfg,
		cache:       cache,
		analyzer:    a,
	}
}

// Search executes one request.
func (s *Searcher) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	requestID := uuid.New().String()
	start := time.Now()

	roots, err := resolvePaths(s.projectRoot, req.Paths)
	if err != nil {
		return nil, err
	}

	matcher, err := match.NewRegexMatcher(req.Pattern, match.Options{
		IgnoreCase:  req.IgnoreCase,
		FixedString: req.FixedStrings,
	})
	if err != nil {
		return nil, err
	}

	discovery, err := s.cfg.Discovery()
	if err != nil {
		return nil, err
	}
	found, err := discovery.Discover(ctx, roots)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(found))
	for _, path := range found {
		if s.analyzer.Supports(path) {
			paths = append(paths, path)
		}
	}

	outcomes := analyzer.Search(ctx, s.cache, paths, matcher, analyzer.SearchOptions{
		Extract: s.extractOptions(req),
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	renderOpts := render.Options{
		LineNumbers:         req.LineNumbers,
		MarkLinesOfInterest: s.cfg.Display.MarkLinesOfInterest,
	}
	limit := clampLimit(req.Limit, s.cfg.MCP.MaxFiles)

	response := &SearchResponse{Matches: []FileMatch{}}
	for _, o := range outcomes {
		if o.Err != nil {
			response.Errors = append(response.Errors, FileError{File: s.relative(o.Path), Error: o.Err.Error()})
			continue
		}
		if !o.Result.HasMatches() {
			continue
		}

		response.TotalFiles++
		if len(response.Matches) >= limit {
			response.Truncated = true
			continue
		}

		lines := o.Result.Match.Lines()
		for i := range lines {
			lines[i]++
		}
		response.Matches = append(response.Matches, FileMatch{
			File:   s.relative(o.Path),
			Lines:  lines,
			Output: o.Result.Format(renderOpts),
		})
	}

	took := time.Since(start)
	response.TookMs = took.Milliseconds()

	log.Printf("[%s] %s pattern=%q files=%d matched=%d cached=%d took=%v",
		requestID, SearchToolName, req.Pattern, len(paths), response.TotalFiles, s.cache.Len(), took)

	return response, nil
}

func (s *Searcher) extractOptions(req *SearchRequest) extract.Options {
	opts := s.cfg.ExtractOptions(false)
	if req.Padding != nil {
		opts.Padding = max(*req.Padding, 0)
	}
	if req.HeaderMaxLines != nil {
		opts.HeaderMaxLines = max(*req.HeaderMaxLines, 0)
	}
	if req.ParentContext != nil {
		opts.IncludeParentContext = *req.ParentContext
	}
	if req.ChildContext != nil {
		opts.IncludeChildContext = *req.ChildContext
	}
	return opts
}

// relative returns path relative to the project root with forward slashes.
func (s *Searcher) relative(path string) string {
	rel, err := filepath.Rel(s.projectRoot, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	return min(limit, config.MaxFilesLimit)
}

// isUserError determines if an error should be shown to the LLM (user error)
// vs treated as an internal system error.
func isUserError(err error) bool {
	return errors.Is(err, ErrOutsideProject) ||
		errors.Is(err, match.ErrInvalidPattern) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, context.DeadlineExceeded)
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
