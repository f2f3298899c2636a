package server

import (
	"errors"
	"strings"

	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/rs/zerolog/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/GregoryLand/openscad-LSP/internal/decl"
	"github.com/GregoryLand/openscad-LSP/internal/format"
)

func ptr[T any](v T) *T { return &v }

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		log.Info().Str("client", params.ClientInfo.Name).Msg("server: client initializing")
	}

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: ptr(true),
			Change:    &syncKind,
		},
		CompletionProvider:         &protocol.CompletionOptions{},
		HoverProvider:              &protocol.HoverOptions{},
		DefinitionProvider:         true,
		DocumentSymbolProvider:     true,
		DocumentFormattingProvider: true,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: ptr(serverVersion),
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	// Library indexing happens off the protocol thread; requests answer
	// from whatever is indexed so far.
	go func() {
		s.ws.ScanLibraries(s.ctx)
		if err := s.ws.Watch(s.ctx); err != nil {
			log.Warn().Err(err).Msg("server: library watcher failed")
		}
	}()
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	log.Info().Msg("server: shutting down")
	s.cancel()
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.ws.Open(s.ctx, uri, params.TextDocument.Text)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)

	// Full sync is advertised, so each change carries the whole text.
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			s.ws.Update(s.ctx, uri, c.Text)
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				s.ws.Update(s.ctx, uri, c.Text)
			} else {
				log.Debug().Str("uri", uri).Msg("server: ignoring ranged change")
			}
		}
	}
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.ws.Close(string(params.TextDocument.URI))
	return nil
}

func (s *Server) completion(ctx *glsp.Context, params *protocol.CompletionParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("server: completion panic")
			result = []protocol.CompletionItem{}
			err = nil
		}
	}()

	uri := string(params.TextDocument.URI)
	visible := s.ws.Items(uri)

	items := make([]protocol.CompletionItem, 0, len(visible)+len(s.builtins))
	for _, it := range visible {
		items = append(items, s.completionItem(it))
	}
	for _, it := range s.builtins {
		items = append(items, s.completionItem(it))
	}

	log.Debug().Str("uri", uri).Int("count", len(items)).Msg("server: completion")
	return items, nil
}

func (s *Server) completionItem(it *decl.Item) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:            it.Label(),
		Kind:             ptr(it.CompletionKind()),
		InsertText:       ptr(it.Snippet(s.cfg.IgnoreDefault)),
		InsertTextFormat: ptr(protocol.InsertTextFormatSnippet),
	}
	if it.Doc != "" {
		item.Documentation = it.Doc
	}
	return item
}

func (s *Server) hover(ctx *glsp.Context, params *protocol.HoverParams) (result *protocol.Hover, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("server: hover panic")
			result, err = nil, nil
		}
	}()

	uri := string(params.TextDocument.URI)
	doc := s.ws.Get(uri)
	if doc == nil {
		return nil, nil
	}

	word := wordAt(doc.Text, params.Position)
	if word == "" {
		return nil, nil
	}

	item := s.ws.Lookup(uri, word)
	if item == nil {
		item = s.byName[word]
	}
	if item == nil {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: item.Hover(),
		},
	}, nil
}

func (s *Server) definition(ctx *glsp.Context, params *protocol.DefinitionParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("server: definition panic")
			result, err = nil, nil
		}
	}()

	uri := string(params.TextDocument.URI)
	doc := s.ws.Get(uri)
	if doc == nil {
		return nil, nil
	}

	word := wordAt(doc.Text, params.Position)
	if word == "" {
		return nil, nil
	}

	item := s.ws.Lookup(uri, word)
	if item == nil || item.URL == "" {
		// Builtins have no source to jump to.
		return nil, nil
	}

	return protocol.Location{
		URI:   protocol.DocumentUri(item.URL),
		Range: item.Range,
	}, nil
}

func (s *Server) documentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("server: document symbol panic")
			result = []protocol.DocumentSymbol{}
			err = nil
		}
	}()

	doc := s.ws.Get(string(params.TextDocument.URI))
	if doc == nil {
		return []protocol.DocumentSymbol{}, nil
	}

	symbols := make([]protocol.DocumentSymbol, 0, len(doc.Items))
	for _, it := range doc.Items {
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           it.Name,
			Detail:         ptr(it.Label()),
			Kind:           it.SymbolKind(),
			Range:          it.Range,
			SelectionRange: it.Range,
		})
	}
	return symbols, nil
}

func (s *Server) formatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) (result []protocol.TextEdit, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("server: formatting panic")
			result, err = nil, nil
		}
	}()

	uri := string(params.TextDocument.URI)
	doc := s.ws.Get(uri)
	if doc == nil {
		return nil, nil
	}

	formatted, err := s.formatter.Format(s.ctx, doc.Text)
	if err != nil {
		if errors.Is(err, format.ErrDisabled) {
			log.Debug().Msg("server: formatting disabled")
		} else {
			log.Warn().Err(err).Str("uri", uri).Msg("server: formatting failed")
		}
		return nil, nil
	}

	// Diff spans are line-granular with 1-based lines and columns.
	diffs := myers.ComputeEdits(span.URIFromURI(uri), doc.Text, formatted)
	edits := make([]protocol.TextEdit, 0, len(diffs))
	for _, d := range diffs {
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(d.Span.Start().Line() - 1),
					Character: uint32(d.Span.Start().Column() - 1),
				},
				End: protocol.Position{
					Line:      uint32(d.Span.End().Line() - 1),
					Character: uint32(d.Span.End().Column() - 1),
				},
			},
			NewText: d.NewText,
		})
	}
	return edits, nil
}

// wordAt returns the identifier under the cursor. OpenSCAD identifiers
// are ASCII words, plus $ for special variables.
func wordAt(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]

	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(line[end]) {
		end++
	}
	if start == end {
		return ""
	}
	return line[start:end]
}

func isWordChar(c byte) bool {
	return c == '_' || c == '$' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}
