package syntax

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var (
	// ErrUnsupportedLanguage indicates there is no parser for a language.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailed indicates the parser could not produce a tree.
	ErrParseFailed = errors.New("parse failed")
)

// Parser turns source text into a Tree. It is safe for concurrent use.
type Parser struct {
	grammars map[Language]*sitter.Language
}

// NewParser creates a parser that supports every language in Languages.
func NewParser() *Parser {
	return &Parser{
		grammars: map[Language]*sitter.Language{
			Python:     sitter.NewLanguage(python.Language()),
			JavaScript: sitter.NewLanguage(typescript.LanguageTypescript()),
			TypeScript: sitter.NewLanguage(typescript.LanguageTypescript()),
			TSX:        sitter.NewLanguage(typescript.LanguageTSX()),
			Rust:       sitter.NewLanguage(rust.Language()),
			C:          sitter.NewLanguage(c.Language()),
			Cpp:        sitter.NewLanguage(c.Language()),
			Java:       sitter.NewLanguage(java.Language()),
			PHP:        sitter.NewLanguage(php.LanguagePHP()),
			Ruby:       sitter.NewLanguage(ruby.Language()),
		},
	}
}

// Supports reports whether lang can be parsed.
func (p *Parser) Supports(lang Language) bool {
	if lang == Go {
		return true
	}
	_, ok := p.grammars[lang]
	return ok
}

// Parse parses source written in lang.
func (p *Parser) Parse(ctx context.Context, lang Language, source []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if lang == Go {
		return parseGo(source)
	}

	grammar, ok := p.grammars[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return parseTreeSitter(grammar, lang, source)
}

// parseTreeSitter parses source with tree-sitter and copies the result into
// an arena so the native tree can be released immediately.
func parseTreeSitter(grammar *sitter.Language, lang Language, source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(grammar); err != nil {
		return nil, fmt.Errorf("%w: %s grammar: %v", ErrParseFailed, lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, lang)
	}
	defer tree.Close()

	b := NewBuilder(source)
	copyNode(b, NoNode, tree.RootNode())
	return b.Build(), nil
}

func copyNode(b *Builder, parent NodeID, node *sitter.Node) {
	id := b.Add(parent, Node{
		Kind:      node.Kind(),
		StartLine: int(node.StartPosition().Row),
		EndLine:   int(node.EndPosition().Row),
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		Named:     node.IsNamed(),
	})

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		copyNode(b, id, child)
	}
}

// parseGo parses Go source with go/ast. The file is wrapped in a synthetic
// source_file root that spans every line, like a tree-sitter root node.
// Partial trees from files with syntax errors are kept.
func parseGo(source []byte) (*Tree, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", source, parser.ParseComments|parser.SkipObjectResolution)
	if file == nil {
		return nil, fmt.Errorf("%w: go: %v", ErrParseFailed, err)
	}

	lastLine := len(SplitLines(source)) - 1
	if lastLine < 0 {
		lastLine = 0
	}

	b := NewBuilder(source)
	root := b.Add(NoNode, Node{
		Kind:      "source_file",
		StartLine: 0,
		EndLine:   lastLine,
		StartByte: 0,
		EndByte:   len(source),
		Named:     true,
	})

	stack := []NodeID{root}
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return true
		}

		parent := stack[len(stack)-1]
		node := Node{
			Kind:  strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast."),
			Named: true,
		}
		if n.Pos().IsValid() && n.End().IsValid() {
			start := fset.Position(n.Pos())
			end := fset.Position(n.End())
			node.StartLine = start.Line - 1
			node.EndLine = end.Line - 1
			node.StartByte = start.Offset
			node.EndByte = end.Offset
		} else {
			p := b.tree.Node(parent)
			node.StartLine, node.EndLine = p.StartLine, p.StartLine
			node.StartByte, node.EndByte = p.StartByte, p.StartByte
		}

		stack = append(stack, b.Add(parent, node))
		return true
	})

	return b.Build(), nil
}
