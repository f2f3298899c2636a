package syntax

import (
	"context"
	"errors"

	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ErrNoLanguage is returned by Parse when the parser was built without a
// grammar.
var ErrNoLanguage = errors.New("syntax: parser has no language")

// sitterParser parses with a fixed tree-sitter grammar. A fresh
// sitter.Parser is created per call, so Parse is safe for concurrent use.
type sitterParser struct {
	lang *sitter.Language
}

// NewParser returns a Parser backed by the given tree-sitter grammar.
func NewParser(lang *sitter.Language) Parser {
	return &sitterParser{lang: lang}
}

func (p *sitterParser) Parse(ctx context.Context, src []byte) (Tree, error) {
	if p.lang == nil {
		return nil, ErrNoLanguage
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	return &sitterTree{tree: tree, src: src}, nil
}

type sitterTree struct {
	tree *sitter.Tree
	src  []byte
}

func (t *sitterTree) Root() Node { return wrap(t.tree.RootNode(), t.src) }
func (t *sitterTree) Close()     { t.tree.Close() }

// sitterNode adapts a *sitter.Node plus its source slice to Node.
type sitterNode struct {
	node *sitter.Node
	src  []byte
}

// wrap returns nil (not an interface holding a nil pointer) for nil nodes.
func wrap(node *sitter.Node, src []byte) Node {
	if node == nil {
		return nil
	}
	return &sitterNode{node: node, src: src}
}

func (n *sitterNode) Kind() string { return n.node.Type() }

func (n *sitterNode) Field(name string) Node {
	return wrap(n.node.ChildByFieldName(name), n.src)
}

func (n *sitterNode) Child(i int) Node {
	if i < 0 || i >= int(n.node.ChildCount()) {
		return nil
	}
	return wrap(n.node.Child(i), n.src)
}

func (n *sitterNode) ChildCount() int { return int(n.node.ChildCount()) }

func (n *sitterNode) NamedChild(i int) Node {
	if i < 0 || i >= int(n.node.NamedChildCount()) {
		return nil
	}
	return wrap(n.node.NamedChild(i), n.src)
}

func (n *sitterNode) NamedChildCount() int { return int(n.node.NamedChildCount()) }

func (n *sitterNode) Text() string { return n.node.Content(n.src) }

func (n *sitterNode) Range() protocol.Range {
	start := n.node.StartPoint()
	end := n.node.EndPoint()
	return protocol.Range{
		Start: protocol.Position{Line: start.Row, Character: start.Column},
		End:   protocol.Position{Line: end.Row, Character: end.Column},
	}
}
