// Package server wires the analysis layers into a Language Server
// Protocol server speaking stdio or TCP.
package server

import (
	"context"

	"github.com/rs/zerolog/log"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/GregoryLand/openscad-LSP/internal/config"
	"github.com/GregoryLand/openscad-LSP/internal/decl"
	"github.com/GregoryLand/openscad-LSP/internal/format"
	"github.com/GregoryLand/openscad-LSP/internal/workspace"
)

const (
	serverName    = "openscad-lsp"
	serverVersion = "1.0.0"
)

// Server owns the protocol handlers and the shared analysis state.
type Server struct {
	cfg       *config.Config
	ws        *workspace.Workspace
	builtins  []*decl.Item
	byName    map[string]*decl.Item // builtin lookup for hover and completion resolve
	formatter *format.Formatter

	// ctx spans the server lifetime; shutdown cancels it to stop the
	// library watcher.
	ctx    context.Context
	cancel context.CancelFunc
}

// New assembles a server over an analyzed workspace and the builtin table.
func New(cfg *config.Config, ws *workspace.Workspace, builtins []*decl.Item, formatter *format.Formatter) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	byName := make(map[string]*decl.Item, len(builtins))
	for _, it := range builtins {
		byName[it.Name] = it
	}

	return &Server{
		cfg:       cfg,
		ws:        ws,
		builtins:  builtins,
		byName:    byName,
		formatter: formatter,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Server) protocolHandler() protocol.Handler {
	return protocol.Handler{
		Initialize:                 s.initialize,
		Initialized:                s.initialized,
		Shutdown:                   s.shutdown,
		SetTrace:                   s.setTrace,
		TextDocumentDidOpen:        s.didOpen,
		TextDocumentDidChange:      s.didChange,
		TextDocumentDidClose:       s.didClose,
		TextDocumentCompletion:     s.completion,
		TextDocumentHover:          s.hover,
		TextDocumentDefinition:     s.definition,
		TextDocumentDocumentSymbol: s.documentSymbol,
		TextDocumentFormatting:     s.formatting,
	}
}

func (s *Server) newGLSPServer() *glspserver.Server {
	handler := s.protocolHandler()
	return glspserver.NewServer(&handler, serverName, false)
}

// RunStdio serves LSP over stdin/stdout. All logging goes to stderr so
// the protocol stream stays clean.
func (s *Server) RunStdio() error {
	log.Info().Msg("server: listening on stdio")
	return s.newGLSPServer().RunStdio()
}

// RunTCP serves LSP over a TCP socket.
func (s *Server) RunTCP(addr string) error {
	log.Info().Str("addr", addr).Msg("server: listening on tcp")
	return s.newGLSPServer().RunTCP(addr)
}
