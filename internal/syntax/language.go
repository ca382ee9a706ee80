package syntax

import (
	"path/filepath"
	"strings"
)

// Language identifies the grammar used to parse a file.
type Language string

const (
	Go         Language = "go"
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Rust       Language = "rust"
	C          Language = "c"
	Cpp        Language = "cpp"
	Java       Language = "java"
	PHP        Language = "php"
	Ruby       Language = "ruby"
	Unknown    Language = "unknown"
)

var extensionLanguages = map[string]Language{
	".go":   Go,
	".py":   Python,
	".pyi":  Python,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".ts":   TypeScript,
	".mts":  TypeScript,
	".cts":  TypeScript,
	".tsx":  TSX,
	".rs":   Rust,
	".c":    C,
	".h":    C,
	".cpp":  Cpp,
	".cc":   Cpp,
	".cxx":  Cpp,
	".hpp":  Cpp,
	".hh":   Cpp,
	".java": Java,
	".php":  PHP,
	".rb":   Ruby,
	".rake": Ruby,
}

// DetectLanguage detects the language of a file from its extension.
func DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	switch filepath.Base(path) {
	case "Rakefile", "Gemfile":
		return Ruby
	}
	return Unknown
}

// Languages returns every language with a parser.
func Languages() []Language {
	return []Language{Go, Python, JavaScript, TypeScript, TSX, Rust, C, Cpp, Java, PHP, Ruby}
}

// Extensions returns the file extensions mapped to a language.
func Extensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return exts
}
