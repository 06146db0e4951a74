package project

import (
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project/vfs"
)

// Directory names searched during discovery, relative to the project root.
const (
	PlanetsDir = "planets"
	SystemsDir = "systems"
)

// JSON paths in a planet config that point at auxiliary XML documents.
const (
	shipLogPointer        = "ShipLog.xmlFile"
	dialoguePointer       = "Props.dialogue"
	translatorTextPointer = "Props.translatorText"
)

// Store owns the categorized collections of tracked files for one project.
// It is not safe for concurrent use; the event loop is its only caller.
type Store struct {
	root   string
	fs     vfs.VFS
	logger *slog.Logger

	files map[Category][]*TrackedFile
}

// NewStore creates an empty store rooted at root.
func NewStore(root string, filesystem vfs.VFS, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		root:   filepath.Clean(root),
		fs:     filesystem,
		logger: logger,
		files:  make(map[Category][]*TrackedFile),
	}
}

// Root returns the project root path.
func (s *Store) Root() string {
	return s.root
}

// Discover populates the store from the project tree: planet and system
// configs are crawled recursively, then every parseable planet config has
// its referenced ship-log, dialogue, and translator text documents loaded.
// Unreadable or malformed files are logged and skipped.
func (s *Store) Discover() {
	start := time.Now()
	s.logger.Info("begin project discovery", "root", s.root)

	s.crawl(filepath.Join(s.root, PlanetsDir), CategoryPlanet)
	s.logger.Info("found planets", "count", len(s.files[CategoryPlanet]))

	s.crawl(filepath.Join(s.root, SystemsDir), CategorySystem)
	s.logger.Info("found star systems", "count", len(s.files[CategorySystem]))

	s.loadReferencedDocuments()
	s.logger.Info("project discovery complete",
		"shipLogs", len(s.files[CategoryShipLog]),
		"dialogues", len(s.files[CategoryDialogue]),
		"texts", len(s.files[CategoryText]),
		"elapsed", time.Since(start))
}

// crawl reads every .json file under dir into the given category.
func (s *Store) crawl(dir string, cat Category) {
	err := s.fs.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		s.readIntoCategory(path, cat)
		return nil
	})
	if err != nil {
		s.logger.Warn("crawl failed", "dir", dir, "error", err)
	}
}

// loadReferencedDocuments resolves the XML pointers of every planet config.
func (s *Store) loadReferencedDocuments() {
	for _, file := range s.files[CategoryPlanet] {
		if !gjson.Valid(file.Content) {
			s.logger.Warn("skipping malformed planet config", "uri", file.URI)
			continue
		}

		if xml := gjson.Get(file.Content, shipLogPointer); xml.Type == gjson.String {
			s.readIntoCategory(filepath.Join(s.root, filepath.FromSlash(xml.String())), CategoryShipLog)
		}

		s.loadXMLList(file.Content, dialoguePointer, CategoryDialogue)
		s.loadXMLList(file.Content, translatorTextPointer, CategoryText)
	}
}

// loadXMLList loads every xmlFile entry of an array-valued pointer field.
func (s *Store) loadXMLList(content, pointer string, cat Category) {
	list := gjson.Get(content, pointer)
	if !list.IsArray() {
		return
	}
	list.ForEach(func(_, value gjson.Result) bool {
		if xml := value.Get("xmlFile"); xml.Type == gjson.String {
			s.readIntoCategory(filepath.Join(s.root, filepath.FromSlash(xml.String())), cat)
		}
		return true
	})
}

// readIntoCategory reads a file from disk and tracks it at version 0.
// Failures are logged, never fatal. Re-reading an already tracked URI
// is a no-op so discovery stays idempotent.
func (s *Store) readIntoCategory(path string, cat Category) {
	uri := lsp.FilePathToURI(path)
	if s.lookup(uri) != nil {
		return
	}

	content, err := s.fs.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to read file", "path", path, "error", err)
		return
	}

	s.files[cat] = append(s.files[cat], &TrackedFile{
		URI:      uri,
		Version:  0,
		Content:  string(content),
		Category: cat,
	})
}

// Open applies an editor buffer to the tracked file with the given URI.
// The update happens in place when the incoming version is strictly
// greater; categories are mutually exclusive, so the first match wins.
//
// A URI no category tracks is adopted when its path sits under a
// discoverable config directory; anything else is logged and ignored.
func (s *Store) Open(uri lsp.DocumentURI, version int, content string) {
	for _, cat := range categories {
		for _, file := range s.files[cat] {
			if file.URI != uri {
				continue
			}
			if version <= file.Version {
				s.logger.Debug("ignoring stale edit",
					"uri", uri, "version", version, "tracked", file.Version)
				return
			}
			file.Version = version
			file.Content = content
			return
		}
	}

	s.adopt(uri, version, content)
}

// adopt tracks a file opened in the editor that discovery never saw,
// provided its path identifies a config category.
func (s *Store) adopt(uri lsp.DocumentURI, version int, content string) {
	cat, ok := s.categorize(lsp.URIToFilePath(uri))
	if !ok {
		s.logger.Warn("ignoring edit for unknown file", "uri", uri)
		return
	}

	s.files[cat] = append(s.files[cat], &TrackedFile{
		URI:      uri,
		Version:  version,
		Content:  content,
		Category: cat,
	})
	s.logger.Info("adopted untracked file", "uri", uri, "category", cat)
}

// categorize maps a path under the project root to a config category.
func (s *Store) categorize(path string) (Category, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return 0, false
	}
	if !strings.HasSuffix(rel, ".json") {
		return 0, false
	}

	rel = filepath.ToSlash(rel)
	switch {
	case strings.HasPrefix(rel, PlanetsDir+"/"):
		return CategoryPlanet, true
	case strings.HasPrefix(rel, SystemsDir+"/"):
		return CategorySystem, true
	default:
		return 0, false
	}
}

// Close reverts a tracked file to its on-disk content at version 0.
// When the disk read fails the previous in-memory content is kept.
func (s *Store) Close(uri lsp.DocumentURI) {
	file := s.lookup(uri)
	if file == nil {
		s.logger.Debug("close for untracked file", "uri", uri)
		return
	}

	file.Version = 0
	content, err := s.fs.ReadFile(lsp.URIToFilePath(uri))
	if err != nil {
		s.logger.Warn("failed to re-read closed file, keeping buffer",
			"uri", uri, "error", err)
		return
	}
	file.Content = string(content)
}

// Reload refreshes a disk-sourced file from disk. Files with open editor
// buffers (version > 0) are left alone; the buffer is the truth.
func (s *Store) Reload(uri lsp.DocumentURI) bool {
	file := s.lookup(uri)
	if file == nil || file.Version > 0 {
		return false
	}

	content, err := s.fs.ReadFile(lsp.URIToFilePath(uri))
	if err != nil {
		s.logger.Warn("failed to reload file", "uri", uri, "error", err)
		return false
	}
	file.Content = string(content)
	return true
}

// Lookup returns the tracked file for uri, or nil.
func (s *Store) Lookup(uri lsp.DocumentURI) *TrackedFile {
	return s.lookup(uri)
}

func (s *Store) lookup(uri lsp.DocumentURI) *TrackedFile {
	for _, cat := range categories {
		for _, file := range s.files[cat] {
			if file.URI == uri {
				return file
			}
		}
	}
	return nil
}

// Files returns the tracked files of one category in insertion order.
func (s *Store) Files(cat Category) []*TrackedFile {
	return s.files[cat]
}

// All iterates over every tracked file across all categories.
// Order is stable within a category.
func (s *Store) All() iter.Seq[*TrackedFile] {
	return func(yield func(*TrackedFile) bool) {
		for _, cat := range categories {
			for _, file := range s.files[cat] {
				if !yield(file) {
					return
				}
			}
		}
	}
}

// RelPath returns the slash-separated path of a tracked file relative to
// the project root, or the absolute path when it lies outside the root.
func (s *Store) RelPath(file *TrackedFile) string {
	rel, err := filepath.Rel(s.root, file.Path())
	if err != nil {
		return filepath.ToSlash(file.Path())
	}
	return filepath.ToSlash(rel)
}
