// Package decl classifies OpenSCAD declarations into items and renders
// their presentation views: completion snippets, signature labels, and
// hover documentation.
package decl

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/GregoryLand/openscad-LSP/internal/syntax"
)

// ItemKind is the closed set of declaration categories. Every consumer
// switches over the four variants below.
type ItemKind interface {
	isItemKind()
}

// Variable is a top-level assignment.
type Variable struct{}

// Function is a function declaration.
type Function struct {
	Flags  BuiltinFlags
	Params []Param
}

// Keyword is a language keyword with a fixed completion snippet. Keywords
// only come from the builtin table, never from parsed documents.
type Keyword struct {
	Text string
}

// Module is a module declaration.
type Module struct {
	Flags  BuiltinFlags
	Params []Param
}

func (Variable) isItemKind() {}
func (Function) isItemKind() {}
func (Keyword) isItemKind()  {}
func (Module) isItemKind()   {}

// Item is one declaration ready for presentation. Views render lazily
// and memoize; an Item must not be shared across goroutines until
// Materialize has run.
type Item struct {
	Name      string
	Kind      ItemKind
	Range     protocol.Range
	URL       string // URI of the owning document, "" for builtins
	Doc       string
	IsBuiltin bool

	label                *string
	hover                *string
	snippet              *string
	snippetIgnoreDefault bool // option value the snippet memo was rendered under
}

// ParseItem classifies a declaration node into an Item. Nodes that do
// not declare anything, and declarations missing a name, yield nil.
func ParseItem(node syntax.Node) *Item {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case syntax.KindModuleDeclaration:
		name := fieldText(node, syntax.FieldName)
		if name == "" {
			return nil
		}
		return &Item{
			Name: name,
			Kind: Module{
				Flags:  moduleFlags(node),
				Params: parseParameters(node.Field(syntax.FieldParameters)),
			},
			Range: node.Range(),
		}

	case syntax.KindFunctionDeclaration:
		name := fieldText(node, syntax.FieldName)
		if name == "" {
			return nil
		}
		return &Item{
			Name: name,
			Kind: Function{
				Flags:  functionFlags(node),
				Params: parseParameters(node.Field(syntax.FieldParameters)),
			},
			Range: node.Range(),
		}

	case syntax.KindAssignment:
		left := node.Field(syntax.FieldLeft)
		if left == nil {
			return nil
		}
		return &Item{
			Name:  left.Text(),
			Kind:  Variable{},
			Range: node.Range(),
		}

	default:
		return nil
	}
}

// moduleFlags reads the flag marker from the first statement of the
// module body.
func moduleFlags(node syntax.Node) BuiltinFlags {
	body := node.Field(syntax.FieldBody)
	if body == nil {
		return 0
	}
	first := body.NamedChild(0)
	if first == nil {
		return 0
	}
	return ExtractFlags(first.Text())
}

// functionFlags reads the flag marker from the declaration's last child;
// a function body is an expression, so the marker sits in the value.
func functionFlags(node syntax.Node) BuiltinFlags {
	last := node.Child(node.ChildCount() - 1)
	if last == nil {
		return 0
	}
	return ExtractFlags(last.Text())
}

func fieldText(node syntax.Node, field string) string {
	f := node.Field(field)
	if f == nil {
		return ""
	}
	return f.Text()
}

// Snippet returns the completion insert text. The memo is keyed by the
// ignoreDefault option it was rendered under, so flipping the option
// recomputes instead of serving a stale view.
func (it *Item) Snippet(ignoreDefault bool) string {
	if it.snippet != nil && it.snippetIgnoreDefault == ignoreDefault {
		return *it.snippet
	}
	s := it.renderSnippet(ignoreDefault)
	it.snippet = &s
	it.snippetIgnoreDefault = ignoreDefault
	return s
}

func (it *Item) renderSnippet(ignoreDefault bool) string {
	switch k := it.Kind.(type) {
	case Variable:
		return it.Name
	case Keyword:
		return k.Text
	case Function:
		return fmt.Sprintf("%s(%s);$0", it.Name, paramSnippet(k.Params, k.Flags, ignoreDefault))
	case Module:
		args := paramSnippet(k.Params, k.Flags, ignoreDefault)
		if k.Flags.IsOperator() {
			return fmt.Sprintf("%s(%s) $0", it.Name, args)
		}
		return fmt.Sprintf("%s(%s);$0", it.Name, args)
	default:
		return it.Name
	}
}

// Label returns the plain signature shown in completion lists and hover
// headers. Defaults are always spelled out; never any snippet markup.
func (it *Item) Label() string {
	if it.label != nil {
		return *it.label
	}
	var s string
	switch k := it.Kind.(type) {
	case Function:
		s = fmt.Sprintf("%s(%s)", it.Name, paramLabel(k.Params))
	case Module:
		s = fmt.Sprintf("%s(%s)", it.Name, paramLabel(k.Params))
	default:
		s = it.Name
	}
	it.label = &s
	return s
}

// Hover returns the markdown hover text: a scad-fenced signature, then
// the documentation after a rule. Docs from user files render inside
// <pre> so client markdown processing cannot mangle them.
func (it *Item) Hover() string {
	if it.hover != nil {
		return *it.hover
	}
	var header string
	switch it.Kind.(type) {
	case Function:
		header = fmt.Sprintf("```scad\nfunction %s\n```", it.Label())
	case Module:
		header = fmt.Sprintf("```scad\nmodule %s\n```", it.Label())
	default:
		header = fmt.Sprintf("```scad\n%s\n```", it.Label())
	}

	s := header
	if it.Doc != "" {
		if it.IsBuiltin {
			s = fmt.Sprintf("%s\n---\n\n%s\n", header, it.Doc)
		} else {
			s = fmt.Sprintf("%s\n---\n\n<pre>\n%s\n</pre>\n", header, it.Doc)
		}
	}
	it.hover = &s
	return s
}

// Materialize renders every view while the item is still exclusively
// owned by one goroutine. Afterwards concurrent readers are safe.
func (it *Item) Materialize(ignoreDefault bool) {
	it.Snippet(ignoreDefault)
	it.Label()
	it.Hover()
}
