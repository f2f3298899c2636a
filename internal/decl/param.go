package decl

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/GregoryLand/openscad-LSP/internal/syntax"
)

// Param is one formal parameter of a module or function declaration.
type Param struct {
	Name    string
	Default string // raw default expression text, "" when absent
	Range   protocol.Range
}

func (p Param) HasDefault() bool { return p.Default != "" }

// parseParameters extracts parameters from a parameter-list node, in
// declaration order. Children that declare nothing (punctuation, special
// variables, assignments missing a side) are skipped. A nil list is fine.
func parseParameters(list syntax.Node) []Param {
	if list == nil {
		return nil
	}
	var params []Param
	for i := 0; i < list.ChildCount(); i++ {
		child := list.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case syntax.KindIdentifier:
			params = append(params, Param{Name: child.Text(), Range: child.Range()})
		case syntax.KindAssignment:
			left := child.Field(syntax.FieldLeft)
			right := child.Field(syntax.FieldRight)
			if left == nil || right == nil {
				continue
			}
			params = append(params, Param{
				Name:    left.Text(),
				Default: right.Text(),
				Range:   right.Range(),
			})
		}
	}
	return params
}

// paramSnippet renders the argument list for a call snippet. Placeholder
// numbering runs 1..K over the parameters that survive filtering, and a
// defaulted parameter that is kept still consumes its number even though
// it renders as plain text.
func paramSnippet(params []Param, flags BuiltinFlags, ignoreDefault bool) string {
	var parts []string
	idx := 1
	for _, p := range params {
		if p.HasDefault() && ignoreDefault {
			continue
		}
		switch {
		case p.HasDefault():
			parts = append(parts, fmt.Sprintf("%s = %s", p.Name, p.Default))
		case flags.IgnoresParamName():
			parts = append(parts, fmt.Sprintf("${%d:%s}", idx, p.Name))
		default:
			parts = append(parts, fmt.Sprintf("%s = ${%d:%s}", p.Name, idx, p.Name))
		}
		idx++
	}
	return strings.Join(parts, ", ")
}

// paramLabel renders the argument list for a signature label, defaults
// included, never any snippet markup.
func paramLabel(params []Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.HasDefault() {
			parts = append(parts, p.Name+"="+p.Default)
		} else {
			parts = append(parts, p.Name)
		}
	}
	return strings.Join(parts, ", ")
}
