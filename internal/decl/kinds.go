package decl

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CompletionKind maps the item to its LSP completion item kind.
func (it *Item) CompletionKind() protocol.CompletionItemKind {
	switch it.Kind.(type) {
	case Variable:
		return protocol.CompletionItemKindVariable
	case Function:
		return protocol.CompletionItemKindFunction
	case Keyword:
		return protocol.CompletionItemKindKeyword
	case Module:
		return protocol.CompletionItemKindModule
	default:
		return protocol.CompletionItemKindVariable
	}
}

// SymbolKind maps the item to its LSP document symbol kind. Keywords map
// to Key; they never occur in documents, but the mapping stays total.
func (it *Item) SymbolKind() protocol.SymbolKind {
	switch it.Kind.(type) {
	case Variable:
		return protocol.SymbolKindVariable
	case Function:
		return protocol.SymbolKindFunction
	case Keyword:
		return protocol.SymbolKindKey
	case Module:
		return protocol.SymbolKindModule
	default:
		return protocol.SymbolKindVariable
	}
}
