// Package syntaxtest provides hand-built syntax trees for tests that
// should not depend on a compiled grammar.
package syntaxtest

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/GregoryLand/openscad-LSP/internal/syntax"
)

// Node is an in-memory syntax.Node. Fields map grammar field names to
// children; field children must also appear in Children to be iterable.
type Node struct {
	NodeKind string
	NodeText string
	Span     protocol.Range
	Named    bool
	Fields   map[string]*Node
	Children []*Node
}

var _ syntax.Node = (*Node)(nil)

func (n *Node) Kind() string { return n.NodeKind }

func (n *Node) Field(name string) syntax.Node {
	c, ok := n.Fields[name]
	if !ok || c == nil {
		return nil
	}
	return c
}

func (n *Node) Child(i int) syntax.Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) ChildCount() int { return len(n.Children) }

func (n *Node) NamedChild(i int) syntax.Node {
	idx := 0
	for _, c := range n.Children {
		if !c.Named {
			continue
		}
		if idx == i {
			return c
		}
		idx++
	}
	return nil
}

func (n *Node) NamedChildCount() int {
	count := 0
	for _, c := range n.Children {
		if c.Named {
			count++
		}
	}
	return count
}

func (n *Node) Text() string { return n.NodeText }

func (n *Node) Range() protocol.Range { return n.Span }

// Leaf returns a named leaf node.
func Leaf(kind, text string) *Node {
	return &Node{NodeKind: kind, NodeText: text, Named: true}
}

// Token returns an anonymous token node, e.g. "(" or ",".
func Token(text string) *Node {
	return &Node{NodeKind: text, NodeText: text}
}

// Parent returns a named node with the given children. Children passed
// via fields must be repeated in children to show up in iteration order.
func Parent(kind, text string, fields map[string]*Node, children ...*Node) *Node {
	return &Node{
		NodeKind: kind,
		NodeText: text,
		Named:    true,
		Fields:   fields,
		Children: children,
	}
}

// Tree wraps a root node as a syntax.Tree.
type Tree struct {
	RootNode *Node
	Closed   bool
}

func (t *Tree) Root() syntax.Node { return t.RootNode }
func (t *Tree) Close()            { t.Closed = true }

// Parser returns canned trees keyed by source text, for injecting into
// the workspace without a grammar.
type Parser struct {
	Trees map[string]*Node // source text -> root
	Err   error
}

var _ syntax.Parser = (*Parser)(nil)

func (p *Parser) Parse(_ context.Context, src []byte) (syntax.Tree, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	root, ok := p.Trees[string(src)]
	if !ok {
		root = &Node{NodeKind: "source_file", Named: true}
	}
	return &Tree{RootNode: root}, nil
}
