// Package scad binds the tree-sitter OpenSCAD grammar.
package scad

import (
	openscad "github.com/alexaandru/go-sitter-forest/openscad"
	sitter "github.com/smacker/go-tree-sitter"
)

// Language returns the OpenSCAD grammar for use with syntax.NewParser.
func Language() *sitter.Language {
	return sitter.NewLanguage(openscad.GetLanguage())
}
