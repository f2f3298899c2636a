package workspace

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GregoryLand/openscad-LSP/internal/decl"
	"github.com/GregoryLand/openscad-LSP/internal/syntax"
)

// Document is one analyzed OpenSCAD source file.
type Document struct {
	URI  string
	Text string
	// Items are the document's top-level declarations, views materialized.
	Items []*decl.Item
	// Includes are the resolved absolute paths of include/use targets.
	Includes []string
}

// include and use statements both carry their target in angle brackets.
var includeRef = regexp.MustCompile(`<([^>]+)>`)

// analyze parses text and collects declaration items and include targets.
// Parse failures degrade to a document without items; a broken file in
// the editor should never take hover or completion down with it.
func (w *Workspace) analyze(ctx context.Context, uri, text string) *Document {
	doc := &Document{URI: uri, Text: text}

	tree, err := w.parser.Parse(ctx, []byte(text))
	if err != nil {
		log.Debug().Err(err).Str("uri", uri).Msg("workspace: parse failed")
		return doc
	}
	defer tree.Close()

	root := tree.Root()
	if root == nil {
		return doc
	}

	var refs []string
	comment := ""
	commentEnd := -1

	for i := 0; i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case syntax.KindComment:
			// Consecutive comment lines merge into one doc block.
			cleaned := cleanComment(child.Text())
			if comment != "" && int(child.Range().Start.Line) == commentEnd+1 {
				comment += "\n" + cleaned
			} else {
				comment = cleaned
			}
			commentEnd = int(child.Range().End.Line)
			continue

		case syntax.KindIncludeStatement, syntax.KindUseStatement:
			if m := includeRef.FindStringSubmatch(child.Text()); m != nil {
				refs = append(refs, m[1])
			}

		default:
			if item := decl.ParseItem(child); item != nil {
				item.URL = uri
				if comment != "" && int(child.Range().Start.Line) == commentEnd+1 {
					item.Doc = comment
				}
				item.Materialize(w.cfg.IgnoreDefault)
				doc.Items = append(doc.Items, item)
			}
		}
		comment = ""
		commentEnd = -1
	}

	doc.Includes = w.resolveIncludes(uri, refs)
	return doc
}

// cleanComment strips comment markers but keeps the line structure.
func cleanComment(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/*") {
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		var lines []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimPrefix(line, "*")
			lines = append(lines, strings.TrimSpace(line))
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "//")
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
