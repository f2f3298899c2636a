package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GregoryLand/openscad-LSP/internal/builtins"
	"github.com/GregoryLand/openscad-LSP/internal/config"
	"github.com/GregoryLand/openscad-LSP/internal/format"
	"github.com/GregoryLand/openscad-LSP/internal/server"
	"github.com/GregoryLand/openscad-LSP/internal/syntax"
	"github.com/GregoryLand/openscad-LSP/internal/syntax/scad"
	"github.com/GregoryLand/openscad-LSP/internal/workspace"
)

var (
	flagConfig        string
	flagStdio         bool
	flagSocket        string
	flagLibraryPaths  []string
	flagIgnoreDefault bool
	flagFmtExe        string
	flagFmtStyle      string
	flagLogLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "openscad-lsp",
	Short: "Language server for OpenSCAD",
	Long: `openscad-lsp analyzes OpenSCAD documents and their libraries, serving
completion, hover, go-to-definition, document symbols, and formatting
over the Language Server Protocol.

The server speaks stdio unless --socket is given. Library directories
come from the config file, the OPENSCADPATH environment variable, and
repeated --library-path flags.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to a TOML config file")
	rootCmd.Flags().BoolVar(&flagStdio, "stdio", false, "serve over stdio (the default; editors pass this flag)")
	rootCmd.Flags().StringVar(&flagSocket, "socket", "", "listen on a TCP address (host:port) instead of stdio")
	rootCmd.Flags().StringArrayVar(&flagLibraryPaths, "library-path", nil, "library directory to scan (repeatable)")
	rootCmd.Flags().BoolVar(&flagIgnoreDefault, "ignore-default", false, "drop defaulted parameters from completion snippets")
	rootCmd.Flags().StringVar(&flagFmtExe, "fmt-exe", "", "formatter executable")
	rootCmd.Flags().StringVar(&flagFmtStyle, "fmt-style", "", "style argument passed to the formatter")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
}

func run(cmd *cobra.Command, args []string) error {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("main: log level %q: %w", cfg.LogLevel, err)
	}
	// Stdout carries the protocol stream, so logs go to stderr.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)

	items, err := builtins.Load(cfg.IgnoreDefault)
	if err != nil {
		return err
	}

	ws := workspace.New(syntax.NewParser(scad.Language()), cfg)
	srv := server.New(cfg, ws, items, format.New(cfg.Fmt))

	if flagSocket != "" && !flagStdio {
		return srv.RunTCP(flagSocket)
	}
	return srv.RunStdio()
}

// applyFlags overlays explicitly set flags onto the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("library-path") {
		cfg.LibraryPaths = append(cfg.LibraryPaths, flagLibraryPaths...)
	}
	if cmd.Flags().Changed("ignore-default") {
		cfg.IgnoreDefault = flagIgnoreDefault
	}
	if cmd.Flags().Changed("fmt-exe") {
		cfg.Fmt.Exe = flagFmtExe
	}
	if cmd.Flags().Changed("fmt-style") {
		cfg.Fmt.Style = flagFmtStyle
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
