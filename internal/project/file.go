package project

import (
	"github.com/nhmods/horizon-ls/internal/lsp"
)

// Category classifies a tracked file within the project.
type Category int

const (
	// CategoryPlanet is a planet config under planets/.
	CategoryPlanet Category = iota
	// CategorySystem is a star system config under systems/.
	CategorySystem
	// CategoryShipLog is a ship-log XML document referenced by a planet config.
	CategoryShipLog
	// CategoryDialogue is a dialogue tree XML document.
	CategoryDialogue
	// CategoryText is a translator text XML document.
	CategoryText
)

// categories is the fixed search order across the five collections.
var categories = []Category{
	CategoryDialogue,
	CategoryShipLog,
	CategorySystem,
	CategoryPlanet,
	CategoryText,
}

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryPlanet:
		return "planet"
	case CategorySystem:
		return "system"
	case CategoryShipLog:
		return "shiplog"
	case CategoryDialogue:
		return "dialogue"
	case CategoryText:
		return "text"
	default:
		return "unknown"
	}
}

// TrackedFile is a single config or document under management.
// Version 0 means the content mirrors the on-disk copy; editor edits
// raise the version and overlay the buffer content.
type TrackedFile struct {
	URI      lsp.DocumentURI
	Version  int
	Content  string
	Category Category
}

// ID returns the versioned document identifier for diagnostics.
func (f *TrackedFile) ID() lsp.VersionedTextDocumentIdentifier {
	return lsp.VersionedTextDocumentIdentifier{
		TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: f.URI},
		Version:                f.Version,
	}
}

// Path returns the filesystem path of the tracked file.
func (f *TrackedFile) Path() string {
	return lsp.URIToFilePath(f.URI)
}
