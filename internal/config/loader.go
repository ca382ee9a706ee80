package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables → flags
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
	v          *viper.Viper
}

// LoaderOption customizes a Loader.
type LoaderOption func(*loader)

// WithConfigFile reads path instead of searching .codegrep/.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

// WithViper loads through v, which may already have command-line flags bound.
func WithViper(v *viper.Viper) LoaderOption {
	return func(l *loader) {
		l.v = v
	}
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	if l.v == nil {
		l.v = viper.New()
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Flags bound to the viper instance
// 2. Environment variables (CODEGREP_*)
// 3. Config file (.codegrep/config.yml or .codegrep/config.yaml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := l.v

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".codegrep"))
	}

	v.SetEnvPrefix("CODEGREP")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., CODEGREP_CONTEXT_PADDING)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values. Every key needs a default
// so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("context.padding", defaults.Context.Padding)
	v.SetDefault("context.parent_context", defaults.Context.ParentContext)
	v.SetDefault("context.child_context", defaults.Context.ChildContext)
	v.SetDefault("context.last_line", defaults.Context.LastLine)
	v.SetDefault("context.top_of_file_scope", defaults.Context.TopOfFileScope)
	v.SetDefault("context.header_max_lines", defaults.Context.HeaderMaxLines)
	v.SetDefault("context.top_margin_lines", defaults.Context.TopMarginLines)

	v.SetDefault("display.colors", defaults.Display.Colors)
	v.SetDefault("display.color", defaults.Display.Color)
	v.SetDefault("display.line_numbers", defaults.Display.LineNumbers)
	v.SetDefault("display.mark_lines_of_interest", defaults.Display.MarkLinesOfInterest)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.exclude", defaults.Paths.Exclude)
	v.SetDefault("paths.hidden", defaults.Paths.Hidden)

	v.SetDefault("mcp.cache_size", defaults.MCP.CacheSize)
	v.SetDefault("mcp.max_files", defaults.MCP.MaxFiles)
	v.SetDefault("mcp.watch", defaults.MCP.Watch)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
