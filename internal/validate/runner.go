package validate

import (
	"log/slog"
	"slices"
	"time"

	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project"
)

// Runner holds the ordered validator list and decides, per change event,
// which validators re-run and which files need their diagnostics cleared.
type Runner struct {
	validators []Validator
	publisher  Publisher
	logger     *slog.Logger

	// dirty maps each file that holds published diagnostics to the
	// document version those diagnostics were produced against.
	dirty map[lsp.DocumentURI]int
}

// NewRunner creates a runner over the given validators, in order.
func NewRunner(publisher Publisher, logger *slog.Logger, validators ...Validator) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		validators: validators,
		publisher:  publisher,
		logger:     logger,
		dirty:      make(map[lsp.DocumentURI]int),
	}
}

// ValidateAll runs every validator unconditionally, records the set of
// files now carrying diagnostics, and publishes everything found.
func (r *Runner) ValidateAll(p *project.Store) {
	start := time.Now()

	var findings []FileDiagnostic
	for _, v := range r.validators {
		findings = append(findings, v.Validate(p)...)
	}

	r.dirty = make(map[lsp.DocumentURI]int)
	for _, f := range findings {
		r.dirty[f.ID.URI] = f.ID.Version
	}

	r.publish(findings)

	r.logger.Info("validation complete",
		"errors", len(findings), "elapsed", time.Since(start))
}

// OnChange re-runs the validators invalidated by the changed documents,
// publishes their findings, and emits an explicit empty diagnostic list
// for every project file absent from the new findings so stale
// diagnostics are cleared. The dirty set keeps files that were not part
// of this change or that still hold diagnostics.
func (r *Runner) OnChange(changed []lsp.DocumentURI, p *project.Store) {
	var findings []FileDiagnostic
	for _, v := range r.validators {
		if !v.ShouldInvalidate(changed, p) {
			continue
		}
		r.logger.Debug("revalidating", "validator", v.Name(), "changed", len(changed))
		findings = append(findings, v.Validate(p)...)
	}

	reported := make(map[lsp.DocumentURI]bool, len(findings))
	for _, f := range findings {
		reported[f.ID.URI] = true
	}

	r.publish(findings)

	// Clear every file that no longer holds diagnostics. The version is
	// the one recorded when its diagnostics were produced; files the
	// server never flagged are cleared with a null version.
	for file := range p.All() {
		if reported[file.URI] {
			continue
		}
		var version *int
		if v, ok := r.dirty[file.URI]; ok {
			version = &v
		}
		if err := r.publisher.PublishDiagnostics(file.URI, version, []lsp.Diagnostic{}); err != nil {
			r.logger.Error("failed to clear diagnostics", "uri", file.URI, "error", err)
		}
	}

	for uri := range r.dirty {
		if slices.Contains(changed, uri) && !reported[uri] {
			delete(r.dirty, uri)
		}
	}
}

// publish groups findings by document and sends one publish event per
// file, carrying the version captured at diagnostic production time.
func (r *Runner) publish(findings []FileDiagnostic) {
	grouped := make(map[lsp.DocumentURI][]lsp.Diagnostic)
	versions := make(map[lsp.DocumentURI]int)
	var order []lsp.DocumentURI

	for _, f := range findings {
		if _, seen := grouped[f.ID.URI]; !seen {
			order = append(order, f.ID.URI)
			versions[f.ID.URI] = f.ID.Version
		}
		grouped[f.ID.URI] = append(grouped[f.ID.URI], f.Diagnostic)
	}
	slices.Sort(order)

	for _, uri := range order {
		version := versions[uri]
		if err := r.publisher.PublishDiagnostics(uri, &version, grouped[uri]); err != nil {
			r.logger.Error("failed to publish diagnostics", "uri", uri, "error", err)
		}
	}
}

// Dirty returns a copy of the current dirty set, for tests.
func (r *Runner) Dirty() map[lsp.DocumentURI]int {
	out := make(map[lsp.DocumentURI]int, len(r.dirty))
	for uri, v := range r.dirty {
		out[uri] = v
	}
	return out
}
