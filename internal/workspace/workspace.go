// Package workspace tracks open documents and scanned libraries, keeping
// an item index per file the way the language server consumes it.
package workspace

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/GregoryLand/openscad-LSP/internal/config"
	"github.com/GregoryLand/openscad-LSP/internal/decl"
	"github.com/GregoryLand/openscad-LSP/internal/syntax"
)

// maxFileSize caps library files fed to the parser (1MB).
const maxFileSize = 1 << 20

// Workspace holds the analyzed state of every open document plus the
// on-disk libraries they can include.
type Workspace struct {
	parser syntax.Parser
	cfg    *config.Config

	mu      sync.RWMutex
	docs    map[string]*Document // open documents by URI
	libs    map[string]*Document // library files by absolute path
	libDirs []string             // directories seen while scanning, for the watcher
}

// New creates an empty workspace.
func New(parser syntax.Parser, cfg *config.Config) *Workspace {
	return &Workspace{
		parser: parser,
		cfg:    cfg,
		docs:   make(map[string]*Document),
		libs:   make(map[string]*Document),
	}
}

// Open analyzes and stores a newly opened document.
func (w *Workspace) Open(ctx context.Context, uri, text string) *Document {
	return w.Update(ctx, uri, text)
}

// Update re-analyzes a document after an edit.
func (w *Workspace) Update(ctx context.Context, uri, text string) *Document {
	doc := w.analyze(ctx, uri, text)

	w.mu.Lock()
	w.docs[uri] = doc
	w.mu.Unlock()

	w.loadIncludes(ctx, doc)

	log.Debug().Str("uri", uri).Int("items", len(doc.Items)).Msg("workspace: analyzed")
	return doc
}

// Close drops an open document. Library state is kept.
func (w *Workspace) Close(uri string) {
	w.mu.Lock()
	delete(w.docs, uri)
	w.mu.Unlock()
}

// Get returns the analyzed document for a URI, or nil.
func (w *Workspace) Get(uri string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[uri]
}

// Items returns the declarations visible from a document: its own plus
// everything reachable through its include chain.
func (w *Workspace) Items(uri string) []*decl.Item {
	w.mu.RLock()
	defer w.mu.RUnlock()

	doc := w.docs[uri]
	if doc == nil {
		return nil
	}

	var items []*decl.Item
	visited := map[string]bool{}
	items = append(items, doc.Items...)
	w.collectIncluded(doc, visited, &items)
	return items
}

func (w *Workspace) collectIncluded(doc *Document, visited map[string]bool, items *[]*decl.Item) {
	for _, path := range doc.Includes {
		if visited[path] {
			continue
		}
		visited[path] = true
		lib := w.libs[path]
		if lib == nil {
			continue
		}
		*items = append(*items, lib.Items...)
		w.collectIncluded(lib, visited, items)
	}
}

// Lookup finds a declaration by name: the document itself first, then its
// includes, then any scanned library.
func (w *Workspace) Lookup(uri, name string) *decl.Item {
	for _, it := range w.Items(uri) {
		if it.Name == name {
			return it
		}
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, lib := range w.libs {
		for _, it := range lib.Items {
			if it.Name == name {
				return it
			}
		}
	}
	return nil
}

// ScanLibraries walks every configured library path and indexes the .scad
// files found. It returns the number of files indexed.
func (w *Workspace) ScanLibraries(ctx context.Context) int {
	count := 0
	for _, root := range w.cfg.LibraryPaths {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				w.mu.Lock()
				w.libDirs = append(w.libDirs, path)
				w.mu.Unlock()
				return nil
			}
			if w.loadLibrary(ctx, path) {
				count++
			}
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("path", root).Msg("workspace: library scan failed")
		}
	}
	log.Debug().Int("files", count).Msg("workspace: libraries scanned")
	return count
}

// loadLibrary parses one on-disk file into the library index. Oversized
// and unreadable files are skipped.
func (w *Workspace) loadLibrary(ctx context.Context, path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".scad") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxFileSize {
		return false
	}
	src, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("workspace: read failed")
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	doc := w.analyze(ctx, PathToURI(abs), string(src))

	w.mu.Lock()
	w.libs[abs] = doc
	w.mu.Unlock()
	return true
}

// RemoveLibrary drops a deleted file from the library index.
func (w *Workspace) RemoveLibrary(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w.mu.Lock()
	delete(w.libs, abs)
	w.mu.Unlock()
}

// loadIncludes makes sure every include target of doc is in the library
// index, so its items resolve without a full scan.
func (w *Workspace) loadIncludes(ctx context.Context, doc *Document) {
	for _, path := range doc.Includes {
		w.mu.RLock()
		_, ok := w.libs[path]
		w.mu.RUnlock()
		if !ok {
			w.loadLibrary(ctx, path)
		}
	}
}

// resolveIncludes turns include refs into absolute paths, trying the
// document's directory first, then each library path.
func (w *Workspace) resolveIncludes(uri string, refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	dir := filepath.Dir(URIToPath(uri))

	var resolved []string
	for _, ref := range refs {
		roots := append([]string{dir}, w.cfg.LibraryPaths...)
		for _, root := range roots {
			candidate := filepath.Join(root, ref)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				if abs, err := filepath.Abs(candidate); err == nil {
					candidate = abs
				}
				resolved = append(resolved, candidate)
				break
			}
		}
	}
	return resolved
}

// LibraryDirs returns the directories seen during scanning, for watching.
func (w *Workspace) LibraryDirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.libDirs) > 0 {
		return append([]string(nil), w.libDirs...)
	}
	return append([]string(nil), w.cfg.LibraryPaths...)
}

// URIToPath converts a file URI to a filesystem path.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return strings.TrimPrefix(uri, "file://")
	}
	return u.Path
}

// PathToURI converts a filesystem path to a file URI.
func PathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
