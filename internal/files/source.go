package files

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/mvp-joe/codegrep/internal/syntax"
)

var (
	// ErrBinaryFile indicates a file whose leading bytes contain NUL.
	ErrBinaryFile = errors.New("binary file")

	// ErrInvalidEncoding indicates a file that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")
)

// sniffLen is how many leading bytes are checked for NUL.
const sniffLen = 512

// Source is the content of one file.
type Source struct {
	Path     string
	Language syntax.Language
	Content  []byte
	Lines    []string
}

// ReadSource reads path and splits it into lines.
func ReadSource(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewSource(path, content)
}

// NewSource validates content read from path.
func NewSource(path string, content []byte) (*Source, error) {
	if isBinary(content) {
		return nil, fmt.Errorf("%s: %w", path, ErrBinaryFile)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidEncoding)
	}

	return &Source{
		Path:     path,
		Language: syntax.DetectLanguage(path),
		Content:  content,
		Lines:    syntax.SplitLines(content),
	}, nil
}

// isBinary checks the first 512 bytes (or less if the file is smaller) for NUL.
func isBinary(content []byte) bool {
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.IndexByte(head, 0) >= 0
}
