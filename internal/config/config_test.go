package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration matching the extractor defaults
// - Load() uses defaults when no config file exists
// - Load() reads .codegrep/config.yml and .codegrep/config.yaml
// - Load() merges a partial config file with defaults
// - Environment variables override config file values
// - Flags bound to the loader's viper override environment variables
// - An explicit config file is read, and a missing one is an error
// - Load() returns errors for malformed YAML and invalid values
// - Validate() rejects negative context values, bad colors, bad globs, bad MCP limits
// - Validate() reports every invalid field and keeps sentinels matchable

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	configDir := filepath.Join(dir, ".codegrep")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	path := filepath.Join(configDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Context.Padding)
	assert.True(t, cfg.Context.ParentContext)
	assert.True(t, cfg.Context.ChildContext)
	assert.True(t, cfg.Context.LastLine)
	assert.True(t, cfg.Context.TopOfFileScope)
	assert.Equal(t, 10, cfg.Context.HeaderMaxLines)
	assert.Equal(t, 3, cfg.Context.TopMarginLines)

	assert.Equal(t, ColorNever, cfg.Display.Colors)
	assert.Equal(t, "red", cfg.Display.Color)
	assert.True(t, cfg.Display.MarkLinesOfInterest)

	assert.Empty(t, cfg.Paths.Include)
	assert.NotEmpty(t, cfg.Paths.Exclude)
	assert.Equal(t, 50, cfg.MCP.MaxFiles)

	assert.NoError(t, Validate(cfg))
}

func TestConfig_ExtractOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Context.Padding = 4
	cfg.Context.ChildContext = false

	opts := cfg.ExtractOptions(true)
	assert.Equal(t, 4, opts.Padding)
	assert.False(t, opts.IncludeChildContext)
	assert.True(t, opts.IncludeParentContext)
	assert.Equal(t, 10, opts.HeaderMaxLines)
	assert.True(t, opts.Verbose)
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Context, cfg.Context)
	assert.Equal(t, defaults.Display, cfg.Display)
	assert.Equal(t, defaults.MCP, cfg.MCP)
	assert.Empty(t, cfg.Paths.Include)
	assert.Equal(t, defaults.Paths.Exclude, cfg.Paths.Exclude)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config.yml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, name, `
context:
  padding: 2
  header_max_lines: 4
display:
  colors: always
  color: blue
  line_numbers: true
paths:
  include:
    - "**/*.py"
mcp:
  max_files: 20
`)

			cfg, err := LoadConfigFromDir(dir)
			require.NoError(t, err)

			assert.Equal(t, 2, cfg.Context.Padding)
			assert.Equal(t, 4, cfg.Context.HeaderMaxLines)
			assert.Equal(t, ColorAlways, cfg.Display.Colors)
			assert.Equal(t, "blue", cfg.Display.Color)
			assert.True(t, cfg.Display.LineNumbers)
			assert.Equal(t, []string{"**/*.py"}, cfg.Paths.Include)
			assert.Equal(t, 20, cfg.MCP.MaxFiles)

			// Unset keys keep their defaults
			assert.True(t, cfg.Context.ParentContext)
			assert.Equal(t, 3, cfg.Context.TopMarginLines)
			assert.Equal(t, Default().Paths.Exclude, cfg.Paths.Exclude)
		})
	}
}

func TestLoad_EnvironmentOverridesConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "context:\n  padding: 2\ndisplay:\n  color: blue\n")

	t.Setenv("CODEGREP_CONTEXT_PADDING", "5")
	t.Setenv("CODEGREP_CONTEXT_CHILD_CONTEXT", "false")
	t.Setenv("CODEGREP_DISPLAY_COLOR", "green")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Context.Padding)
	assert.False(t, cfg.Context.ChildContext)
	assert.Equal(t, "green", cfg.Display.Color)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("CODEGREP_CONTEXT_PADDING", "5")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("padding", 1, "")
	require.NoError(t, flags.Parse([]string{"--padding", "7"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag("context.padding", flags.Lookup("padding")))

	cfg, err := NewLoader(t.TempDir(), WithViper(v)).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Context.Padding)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("context:\n  top_margin_lines: 0\n"), 0644))

	cfg, err := NewLoader(t.TempDir(), WithConfigFile(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Context.TopMarginLines)

	_, err = NewLoader(dir, WithConfigFile(filepath.Join(dir, "missing.yml"))).Load()
	assert.Error(t, err)
}

func TestLoad_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "context:\n  padding: [unclosed\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "context:\n  padding: -1\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPadding)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"negative padding", func(c *Config) { c.Context.Padding = -1 }, ErrInvalidPadding},
		{"negative header max", func(c *Config) { c.Context.HeaderMaxLines = -2 }, ErrInvalidHeaderMax},
		{"negative margin", func(c *Config) { c.Context.TopMarginLines = -3 }, ErrInvalidMargin},
		{"unknown color", func(c *Config) { c.Display.Color = "purple" }, ErrInvalidColor},
		{"unknown color mode", func(c *Config) { c.Display.Colors = "sometimes" }, ErrInvalidColor},
		{"bad include glob", func(c *Config) { c.Paths.Include = []string{"[abc"} }, ErrInvalidPattern},
		{"bad exclude glob", func(c *Config) { c.Paths.Exclude = []string{"src/[z"} }, ErrInvalidPattern},
		{"zero cache", func(c *Config) { c.MCP.CacheSize = 0 }, ErrInvalidMCPSettings},
		{"too many files", func(c *Config) { c.MCP.MaxFiles = MaxFilesLimit + 1 }, ErrInvalidMCPSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_AcceptsColorCase(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Display.Colors = "AUTO"
	cfg.Display.Color = "Cyan"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReportsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Context.Padding = -1
	cfg.Display.Color = "purple"
	cfg.MCP.MaxFiles = 0

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrInvalidPadding)
	assert.ErrorIs(t, err, ErrInvalidColor)
	assert.ErrorIs(t, err, ErrInvalidMCPSettings)
}
