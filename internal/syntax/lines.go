package syntax

import "strings"

// SplitLines splits source into lines. A trailing newline does not produce an
// extra empty line and carriage returns before newlines are removed, so line i
// matches row i of the parse tree.
func SplitLines(source []byte) []string {
	if len(source) == 0 {
		return nil
	}
	text := string(source)
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
