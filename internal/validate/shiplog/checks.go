package shiplog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/validate"
)

// Validate runs every cross-reference check over the registries and
// returns the accumulated diagnostics. Rebuilding the Context and calling
// Validate on the same project state yields the same diagnostics.
func (c *Context) Validate() []validate.FileDiagnostic {
	var out []validate.FileDiagnostic

	out = append(out, c.checkDuplicates(c.astroObjectIDs)...)
	out = append(out, c.checkDuplicates(c.entryIDs)...)
	out = append(out, c.checkDuplicates(c.factIDs)...)
	out = append(out, c.checkReserved(c.entryIDs, c.dataset.IsReservedEntryID)...)
	out = append(out, c.checkReserved(c.factIDs, c.dataset.IsReservedFactID)...)
	out = append(out, c.checkCuriosityRefs()...)
	out = append(out, c.checkSourceRefs()...)

	return out
}

// checkDuplicates flags every record whose value appears more than once
// in the namespace. The sort is stable so records of equal value keep
// their document order.
func (c *Context) checkDuplicates(records []IDRecord) []validate.FileDiagnostic {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b IDRecord) int {
		return strings.Compare(a.Value, b.Value)
	})

	var out []validate.FileDiagnostic
	var run []IDRecord

	flush := func() {
		if len(run) < 2 {
			return
		}
		for _, rec := range run {
			out = append(out, diagnostic(rec, validate.CodeShipLogDuplicateID,
				fmt.Sprintf("Duplicate ID: `%s`", rec.Value)))
		}
	}

	for _, rec := range sorted {
		if len(run) > 0 && run[len(run)-1].Value != rec.Value {
			flush()
			run = run[:0]
		}
		run = append(run, rec)
	}
	flush()

	return out
}

// checkReserved flags identifiers that collide with the base game,
// regardless of whether they are also duplicated within the project.
func (c *Context) checkReserved(records []IDRecord, reserved func(string) bool) []validate.FileDiagnostic {
	var out []validate.FileDiagnostic
	for _, rec := range records {
		if reserved(rec.Value) {
			out = append(out, diagnostic(rec, validate.CodeShipLogReservedID,
				fmt.Sprintf("`%s` is taken by the base game", rec.Value)))
		}
	}
	return out
}

// checkCuriosityRefs validates curiosity references against the built-in
// curiosities and every curiosity declared in any star system config.
func (c *Context) checkCuriosityRefs() []validate.FileDiagnostic {
	var out []validate.FileDiagnostic
	for _, ref := range c.curiosityRefs {
		if c.dataset.IsCuriosity(ref.Value) || c.declaredCuriosities[ref.Value] {
			continue
		}
		out = append(out, diagnostic(ref, validate.CodeShipLogMissingCuriosity,
			fmt.Sprintf("Unknown Curiosity: `%s`, declare it in a star system config", ref.Value)))
	}
	return out
}

// checkSourceRefs validates rumor source references against the project's
// entry ids and the base game's.
func (c *Context) checkSourceRefs() []validate.FileDiagnostic {
	known := make(map[string]bool, len(c.entryIDs))
	for _, rec := range c.entryIDs {
		known[rec.Value] = true
	}

	var out []validate.FileDiagnostic
	for _, ref := range c.sourceIDRefs {
		if known[ref.Value] || c.dataset.IsReservedEntryID(ref.Value) {
			continue
		}
		out = append(out, diagnostic(ref, validate.CodeShipLogInvalidSourceID,
			fmt.Sprintf("Unknown Entry: `%s`", ref.Value)))
	}
	return out
}

func diagnostic(rec IDRecord, code, message string) validate.FileDiagnostic {
	return validate.FileDiagnostic{
		ID: rec.File,
		Diagnostic: lsp.Diagnostic{
			Range:    rec.Range,
			Severity: lsp.DiagnosticSeverityError,
			Code:     code,
			Source:   validate.Source,
			Message:  message,
		},
	}
}
