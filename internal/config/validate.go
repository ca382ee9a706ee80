package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/codegrep/internal/render"
)

var (
	// ErrInvalidPadding indicates a negative padding
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrInvalidHeaderMax indicates a negative header line limit
	ErrInvalidHeaderMax = errors.New("invalid header max lines")

	// ErrInvalidMargin indicates a negative top margin
	ErrInvalidMargin = errors.New("invalid top margin")

	// ErrInvalidColor indicates an unknown color or color mode
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidPattern indicates an include or exclude glob that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrInvalidMCPSettings indicates invalid MCP server limits
	ErrInvalidMCPSettings = errors.New("invalid mcp settings")
)

// MaxFilesLimit caps the number of files one MCP request may return.
const MaxFilesLimit = 500

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateContext(&cfg.Context); err != nil {
		errs = append(errs, err)
	}

	if err := validateDisplay(&cfg.Display); err != nil {
		errs = append(errs, err)
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateMCP(&cfg.MCP); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateContext(cfg *ContextConfig) error {
	var errs []error

	if cfg.Padding < 0 {
		errs = append(errs, fmt.Errorf("%w: padding cannot be negative, got %d", ErrInvalidPadding, cfg.Padding))
	}

	if cfg.HeaderMaxLines < 0 {
		errs = append(errs, fmt.Errorf("%w: header_max_lines cannot be negative, got %d", ErrInvalidHeaderMax, cfg.HeaderMaxLines))
	}

	if cfg.TopMarginLines < 0 {
		errs = append(errs, fmt.Errorf("%w: top_margin_lines cannot be negative, got %d", ErrInvalidMargin, cfg.TopMarginLines))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateDisplay(cfg *DisplayConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Colors) {
	case ColorNever, ColorAlways, ColorAuto:
	default:
		errs = append(errs, fmt.Errorf("%w: colors must be 'never', 'always' or 'auto', got '%s'", ErrInvalidColor, cfg.Colors))
	}

	if _, err := render.ParseColor(cfg.Color); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidColor, err))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateMCP(cfg *MCPConfig) error {
	var errs []error

	if cfg.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidMCPSettings, cfg.CacheSize))
	}

	if cfg.MaxFiles <= 0 || cfg.MaxFiles > MaxFilesLimit {
		errs = append(errs, fmt.Errorf("%w: max_files must be between 1 and %d, got %d", ErrInvalidMCPSettings, MaxFilesLimit, cfg.MaxFiles))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every wrapped sentinel with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &multiError{errs: errs}
}

type multiError struct {
	errs []error
}

func (m *multiError) Error() string {
	msgs := make([]string, len(m.errs))
	for i, err := range m.errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (m *multiError) Unwrap() []error {
	return m.errs
}
