package syntax

import "bytes"

// NodeID addresses a node inside a Tree's arena.
type NodeID int

// NoNode is returned by lookups that find nothing.
const NoNode NodeID = -1

// Node is a parser-agnostic syntax node. Lines are 0-based and inclusive.
type Node struct {
	Kind      string
	StartLine int
	EndLine   int
	StartByte int
	EndByte   int
	Named     bool
	Children  []NodeID
}

// Span returns the number of lines the node covers beyond its first line.
func (n *Node) Span() int {
	return n.EndLine - n.StartLine
}

// Tree is an arena of nodes produced once per parsed file.
// Nodes reference each other by NodeID, so the per-line registries built on
// top of a Tree never own nodes.
type Tree struct {
	nodes  []Node
	root   NodeID
	source []byte
}

// Root returns the id of the root node, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	if t == nil || len(t.nodes) == 0 {
		return NoNode
	}
	return t.root
}

// Node returns the node with the given id. The returned pointer must not be
// modified.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Snippet returns the first source line of a node's text.
func (t *Tree) Snippet(id NodeID) string {
	n := t.Node(id)
	if n.StartByte < 0 || n.EndByte > len(t.source) || n.StartByte >= n.EndByte {
		return ""
	}
	text := t.source[n.StartByte:n.EndByte]
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return string(bytes.TrimRight(text, "\r"))
}

// Walk visits nodes depth-first in pre-order starting at id. The visitor
// receives the node id and its depth; returning false skips the node's
// children.
func (t *Tree) Walk(id NodeID, visit func(id NodeID, depth int) bool) {
	if t.Len() == 0 || id == NoNode {
		return
	}
	t.walk(id, 0, visit)
}

func (t *Tree) walk(id NodeID, depth int, visit func(NodeID, int) bool) {
	if !visit(id, depth) {
		return
	}
	for _, child := range t.nodes[id].Children {
		t.walk(child, depth+1, visit)
	}
}

// Descendants returns id and every node below it in pre-order.
func (t *Tree) Descendants(id NodeID) []NodeID {
	var out []NodeID
	t.Walk(id, func(n NodeID, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Builder assembles a Tree. Parents must be added before their children.
type Builder struct {
	tree *Tree
}

// NewBuilder creates a builder for a tree over source.
func NewBuilder(source []byte) *Builder {
	return &Builder{tree: &Tree{source: source, root: NoNode}}
}

// Add appends a node as a child of parent and returns its id. Passing NoNode
// as parent makes the node the root; a tree has exactly one root.
func (b *Builder) Add(parent NodeID, n Node) NodeID {
	n.Children = nil
	id := NodeID(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, n)
	if parent == NoNode {
		b.tree.root = id
	} else {
		b.tree.nodes[parent].Children = append(b.tree.nodes[parent].Children, id)
	}
	return id
}

// Build returns the assembled tree. The builder must not be used afterwards.
func (b *Builder) Build() *Tree {
	t := b.tree
	b.tree = nil
	return t
}
