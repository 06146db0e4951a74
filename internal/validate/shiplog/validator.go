package shiplog

import (
	"log/slog"

	"github.com/nhmods/horizon-ls/internal/basegame"
	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project"
	"github.com/nhmods/horizon-ls/internal/validate"
)

// Validator adapts the cross-reference engine to the runner. It is
// stateless between runs; each Validate call rebuilds the Context from
// the current project.
type Validator struct {
	dataset *basegame.Dataset
	logger  *slog.Logger
}

// NewValidator creates the cross-reference validator over the given
// base-game catalogue.
func NewValidator(dataset *basegame.Dataset, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{dataset: dataset, logger: logger}
}

func (v *Validator) Name() string { return "shiplog" }

// ShouldInvalidate reports whether any changed document is a ship-log
// document, a star system config, or a planet config. Planet configs
// participate because they map ship logs to systems and astro objects.
func (v *Validator) ShouldInvalidate(changed []lsp.DocumentURI, p *project.Store) bool {
	for _, uri := range changed {
		file := p.Lookup(uri)
		if file == nil {
			continue
		}
		switch file.Category {
		case project.CategoryShipLog, project.CategorySystem, project.CategoryPlanet:
			return true
		}
	}
	return false
}

func (v *Validator) Validate(p *project.Store) []validate.FileDiagnostic {
	return BuildContext(p, v.dataset, v.logger).Validate()
}
