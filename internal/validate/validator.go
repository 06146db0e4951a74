package validate

import (
	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project"
)

// FileDiagnostic pairs one diagnostic with the versioned document it
// belongs to. The version is captured at production time so a stale
// diagnostic is never shown against a newer buffer.
type FileDiagnostic struct {
	ID         lsp.VersionedTextDocumentIdentifier
	Diagnostic lsp.Diagnostic
}

// NewFileDiagnostic builds a FileDiagnostic for a tracked file.
func NewFileDiagnostic(file *project.TrackedFile, d lsp.Diagnostic) FileDiagnostic {
	return FileDiagnostic{ID: file.ID(), Diagnostic: d}
}

// Validator is one independent project check.
type Validator interface {
	// Name identifies the validator in logs.
	Name() string

	// ShouldInvalidate reports whether a change to any of the given
	// documents invalidates this validator's previous results.
	ShouldInvalidate(changed []lsp.DocumentURI, p *project.Store) bool

	// Validate re-derives all diagnostics from the current project state.
	// It never fails; whatever could not be parsed contributes nothing.
	Validate(p *project.Store) []FileDiagnostic
}

// Publisher delivers diagnostics for one document to the client.
// A nil version means the server has never produced diagnostics for the
// document and has no version on record for it.
type Publisher interface {
	PublishDiagnostics(uri lsp.DocumentURI, version *int, diagnostics []lsp.Diagnostic) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(uri lsp.DocumentURI, version *int, diagnostics []lsp.Diagnostic) error

func (f PublisherFunc) PublishDiagnostics(uri lsp.DocumentURI, version *int, diagnostics []lsp.Diagnostic) error {
	return f(uri, version, diagnostics)
}
