// Package builtins ships the builtin OpenSCAD declarations: modules,
// functions, special variables, and keyword snippets. The table lives in
// an embedded TOML manifest so it can be reviewed and extended without
// touching code.
package builtins

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/GregoryLand/openscad-LSP/internal/decl"
)

//go:embed builtins.toml
var manifestTOML string

type manifest struct {
	Modules   []declEntry    `toml:"modules"`
	Functions []declEntry    `toml:"functions"`
	Variables []varEntry     `toml:"variables"`
	Keywords  []keywordEntry `toml:"keywords"`
}

type declEntry struct {
	Name   string       `toml:"name"`
	Flags  string       `toml:"flags"`
	Doc    string       `toml:"doc"`
	Params []paramEntry `toml:"params"`
}

type paramEntry struct {
	Name    string `toml:"name"`
	Default string `toml:"default"`
}

type varEntry struct {
	Name string `toml:"name"`
	Doc  string `toml:"doc"`
}

type keywordEntry struct {
	Name string `toml:"name"`
	Text string `toml:"text"`
	Doc  string `toml:"doc"`
}

// Load decodes the embedded manifest into presentation-ready items. All
// views are materialized here, so the returned items are safe to share
// across request handlers.
func Load(ignoreDefault bool) ([]*decl.Item, error) {
	var m manifest
	if _, err := toml.Decode(manifestTOML, &m); err != nil {
		return nil, fmt.Errorf("builtins: decode manifest: %w", err)
	}

	items := make([]*decl.Item, 0,
		len(m.Modules)+len(m.Functions)+len(m.Variables)+len(m.Keywords))

	for _, e := range m.Modules {
		flags, err := entryFlags(e)
		if err != nil {
			return nil, err
		}
		items = append(items, &decl.Item{
			Name:      e.Name,
			Kind:      decl.Module{Flags: flags, Params: entryParams(e)},
			Doc:       e.Doc,
			IsBuiltin: true,
		})
	}
	for _, e := range m.Functions {
		flags, err := entryFlags(e)
		if err != nil {
			return nil, err
		}
		items = append(items, &decl.Item{
			Name:      e.Name,
			Kind:      decl.Function{Flags: flags, Params: entryParams(e)},
			Doc:       e.Doc,
			IsBuiltin: true,
		})
	}
	for _, e := range m.Variables {
		items = append(items, &decl.Item{
			Name:      e.Name,
			Kind:      decl.Variable{},
			Doc:       e.Doc,
			IsBuiltin: true,
		})
	}
	for _, e := range m.Keywords {
		items = append(items, &decl.Item{
			Name:      e.Name,
			Kind:      decl.Keyword{Text: e.Text},
			Doc:       e.Doc,
			IsBuiltin: true,
		})
	}

	for _, it := range items {
		it.Materialize(ignoreDefault)
	}
	return items, nil
}

// entryFlags decodes the entry's flag bit string with the same decoder
// the source markers use.
func entryFlags(e declEntry) (decl.BuiltinFlags, error) {
	if e.Flags == "" {
		return 0, nil
	}
	flags, err := decl.ParseBits(e.Flags)
	if err != nil {
		return 0, fmt.Errorf("builtins: %s: %w", e.Name, err)
	}
	return flags, nil
}

func entryParams(e declEntry) []decl.Param {
	if len(e.Params) == 0 {
		return nil
	}
	params := make([]decl.Param, 0, len(e.Params))
	for _, p := range e.Params {
		params = append(params, decl.Param{Name: p.Name, Default: p.Default})
	}
	return params
}
