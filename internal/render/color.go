package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownColor indicates a color name that is not supported.
var ErrUnknownColor = errors.New("unknown color")

// Color is one of the eight basic ANSI colors.
type Color string

const (
	Black   Color = "black"
	Red     Color = "red"
	Green   Color = "green"
	Yellow  Color = "yellow"
	Blue    Color = "blue"
	Magenta Color = "magenta"
	Cyan    Color = "cyan"
	White   Color = "white"
)

const (
	foregroundReset = "\033[39m"
	backgroundReset = "\033[49m"
)

var foregroundCodes = map[Color]string{
	Black:   "\033[30m",
	Red:     "\033[31m",
	Green:   "\033[32m",
	Yellow:  "\033[33m",
	Blue:    "\033[34m",
	Magenta: "\033[35m",
	Cyan:    "\033[36m",
	White:   "\033[97m",
}

var backgroundCodes = map[Color]string{
	Black:   "\033[40m",
	Red:     "\033[41m",
	Green:   "\033[42m",
	Yellow:  "\033[43m",
	Blue:    "\033[44m",
	Magenta: "\033[45m",
	Cyan:    "\033[46m",
	White:   "\033[47m",
}

// Colors returns the supported color names.
func Colors() []Color {
	return []Color{Black, Red, Green, Yellow, Blue, Magenta, Cyan, White}
}

// ParseColor parses a color name case-insensitively.
func ParseColor(name string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := foregroundCodes[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return c, nil
}

// Foreground returns the ANSI foreground escape for c, or "" if unknown.
func (c Color) Foreground() string {
	return foregroundCodes[c]
}

// Background returns the ANSI background escape for c, or "" if unknown.
func (c Color) Background() string {
	return backgroundCodes[c]
}
