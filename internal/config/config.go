// Package config loads codegrep settings from .codegrep/config.yml with
// environment variable and command-line overrides.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags bound to the loader's viper instance
//  2. Environment variables (CODEGREP_*)
//  3. Project config (.codegrep/config.yml or an explicit --config file)
//  4. Built-in defaults
//
// Nested keys map to underscores, so context.header_max_lines is read from
// CODEGREP_CONTEXT_HEADER_MAX_LINES.
package config

import (
	"github.com/mvp-joe/codegrep/internal/extract"
	"github.com/mvp-joe/codegrep/internal/files"
)

// Color modes for Display.Colors.
const (
	ColorNever  = "never"
	ColorAlways = "always"
	ColorAuto   = "auto"
)

// Config represents the complete codegrep configuration.
type Config struct {
	Context ContextConfig `yaml:"context" mapstructure:"context"`
	Display DisplayConfig `yaml:"display" mapstructure:"display"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	MCP     MCPConfig     `yaml:"mcp" mapstructure:"mcp"`
}

// ContextConfig controls how much syntactic context surrounds each match.
type ContextConfig struct {
	Padding        int  `yaml:"padding" mapstructure:"padding"`
	ParentContext  bool `yaml:"parent_context" mapstructure:"parent_context"`
	ChildContext   bool `yaml:"child_context" mapstructure:"child_context"`
	LastLine       bool `yaml:"last_line" mapstructure:"last_line"`
	TopOfFileScope bool `yaml:"top_of_file_scope" mapstructure:"top_of_file_scope"`
	HeaderMaxLines int  `yaml:"header_max_lines" mapstructure:"header_max_lines"`
	TopMarginLines int  `yaml:"top_margin_lines" mapstructure:"top_margin_lines"`
}

// DisplayConfig controls terminal output.
type DisplayConfig struct {
	Colors              string `yaml:"colors" mapstructure:"colors"` // never, always or auto
	Color               string `yaml:"color" mapstructure:"color"`   // highlight color name
	LineNumbers         bool   `yaml:"line_numbers" mapstructure:"line_numbers"`
	MarkLinesOfInterest bool   `yaml:"mark_lines_of_interest" mapstructure:"mark_lines_of_interest"`
}

// PathsConfig defines which files are searched when walking directories.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // empty means every supported file
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
	Hidden  bool     `yaml:"hidden" mapstructure:"hidden"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	CacheSize int  `yaml:"cache_size" mapstructure:"cache_size"` // analyzed files kept in memory
	MaxFiles  int  `yaml:"max_files" mapstructure:"max_files"`   // default per-request file limit
	Watch     bool `yaml:"watch" mapstructure:"watch"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	ctx := extract.DefaultOptions()
	return &Config{
		Context: ContextConfig{
			Padding:        ctx.Padding,
			ParentContext:  ctx.IncludeParentContext,
			ChildContext:   ctx.IncludeChildContext,
			LastLine:       ctx.IncludeLastLine,
			TopOfFileScope: ctx.ShowTopOfFileScope,
			HeaderMaxLines: ctx.HeaderMaxLines,
			TopMarginLines: ctx.TopMarginLines,
		},
		Display: DisplayConfig{
			Colors:              ColorNever,
			Color:               "red",
			LineNumbers:         false,
			MarkLinesOfInterest: true,
		},
		Paths: PathsConfig{
			Include: []string{},
			Exclude: []string{
				"node_modules/**",
				"vendor/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
			},
		},
		MCP: MCPConfig{
			CacheSize: 1000,
			MaxFiles:  50,
			Watch:     true,
		},
	}
}

// ExtractOptions converts the context section into extractor options.
func (c *Config) ExtractOptions(verbose bool) extract.Options {
	return extract.Options{
		Padding:              c.Context.Padding,
		IncludeParentContext: c.Context.ParentContext,
		IncludeChildContext:  c.Context.ChildContext,
		IncludeLastLine:      c.Context.LastLine,
		ShowTopOfFileScope:   c.Context.TopOfFileScope,
		HeaderMaxLines:       c.Context.HeaderMaxLines,
		TopMarginLines:       c.Context.TopMarginLines,
		Verbose:              verbose,
	}
}

// Discovery creates a file discovery from the paths section.
func (c *Config) Discovery() (*files.Discovery, error) {
	d, err := files.NewDiscovery(c.Paths.Include, c.Paths.Exclude)
	if err != nil {
		return nil, err
	}
	d.IncludeHidden = c.Paths.Hidden
	return d, nil
}
