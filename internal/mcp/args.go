package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ErrOutsideProject indicates a requested path outside the project root.
var ErrOutsideProject = errors.New("path is outside project root")

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]interface{}
}

// SearchRequest holds the codegrep_search arguments. Pointer fields are
// optional overrides of the configured defaults.
type SearchRequest struct {
	Pattern        string   `json:"pattern"`
	Paths          []string `json:"paths,omitempty"`
	IgnoreCase     bool     `json:"ignore_case,omitempty"`
	FixedStrings   bool     `json:"fixed_strings,omitempty"`
	Padding        *int     `json:"padding,omitempty"`
	HeaderMaxLines *int     `json:"header_max_lines,omitempty"`
	ParentContext  *bool    `json:"parent_context,omitempty"`
	ChildContext   *bool    `json:"child_context,omitempty"`
	LineNumbers    bool     `json:"line_numbers,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

// coerceBindArguments binds MCP request arguments to a target struct with
// type coercion. MCP clients often send every parameter as a string,
// including JSON-encoded arrays.
func coerceBindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(request.GetArguments())
}

// jsonStringHook decodes JSON-looking strings into slices, booleans and numbers.
func jsonStringHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}

	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch {
	case t.Kind() == reflect.Slice:
		if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
			slicePtr := reflect.New(t)
			if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err == nil {
				return slicePtr.Elem().Interface(), nil
			}
		}

	case t.Kind() == reflect.Bool:
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}

	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			// Let mapstructure handle the number conversion
			return n, nil
		}
	}

	return data, nil
}

// resolvePaths maps request paths to absolute paths inside root. Relative
// paths are taken relative to root; an empty list means root itself.
func resolvePaths(root string, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return []string{root}, nil
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, p)
		}
		abs = filepath.Clean(abs)

		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%w: %s", ErrOutsideProject, p)
		}
		resolved = append(resolved, abs)
	}
	return resolved, nil
}
