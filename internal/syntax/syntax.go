// Package syntax wraps tree-sitter parse trees behind a small node
// abstraction so the analysis layers never touch the C bindings directly.
package syntax

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Node kinds produced by the tree-sitter OpenSCAD grammar that the
// analysis layers care about. Everything else is skipped.
const (
	KindModuleDeclaration   = "module_declaration"
	KindFunctionDeclaration = "function_declaration"
	KindAssignment          = "assignment"
	KindIdentifier          = "identifier"
	KindSpecialVariable     = "special_variable"
	KindComment             = "comment"
	KindIncludeStatement    = "include_statement"
	KindUseStatement        = "use_statement"
)

// Field names used by the grammar's declaration nodes.
const (
	FieldName       = "name"
	FieldParameters = "parameters"
	FieldBody       = "body"
	FieldLeft       = "left"
	FieldRight      = "right"
)

// Node is a single syntax-tree node. Implementations carry the source
// text they were parsed from, so Text never needs the document passed in.
type Node interface {
	// Kind returns the grammar's node type, e.g. "module_declaration".
	Kind() string
	// Field returns the child for a grammar field name, or nil.
	Field(name string) Node
	// Child returns the i-th child including anonymous tokens, or nil.
	Child(i int) Node
	ChildCount() int
	// NamedChild returns the i-th named child, or nil.
	NamedChild(i int) Node
	NamedChildCount() int
	// Text returns the raw source text the node spans.
	Text() string
	// Range returns the node's span in LSP coordinates (zero-based).
	Range() protocol.Range
}

// Tree owns a parsed syntax tree. Nodes obtained from Root are only
// valid until Close is called.
type Tree interface {
	Root() Node
	Close()
}

// Parser turns source bytes into a Tree.
type Parser interface {
	Parse(ctx context.Context, src []byte) (Tree, error)
}
