// Package filepaths validates file path values in planet configs against
// the project directory. Which config fields hold paths is learned from
// the published body schema: any schema property carrying the
// "x-file-path" marker is checked.
package filepaths

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project"
	"github.com/nhmods/horizon-ls/internal/project/vfs"
	"github.com/nhmods/horizon-ls/internal/validate"
)

// arrayStep marks an array wildcard in a property chain.
const arrayStep = "#"

// Checker validates schema-declared file path fields. It always
// invalidates: any file appearing or disappearing on disk can change the
// outcome.
type Checker struct {
	fs     vfs.VFS
	logger *slog.Logger

	// chains are property paths into a planet config whose string values
	// are project-relative file paths.
	chains [][]string
}

// NewChecker creates a checker with no known path fields. Call Prepare to
// load them from the schema.
func NewChecker(filesystem vfs.VFS, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{fs: filesystem, logger: logger}
}

// Prepare fetches the body schema and collects every property marked
// x-file-path. Fetch or parse failures are logged and leave the checker
// with nothing to check; validation still runs, finding nothing.
func (c *Checker) Prepare(ctx context.Context, schemaURL string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, schemaURL, nil)
	if err != nil {
		c.logger.Warn("bad schema URL", "url", schemaURL, "error", err)
		return
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Warn("failed to fetch body schema", "url", schemaURL, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("schema fetch returned non-200", "url", schemaURL, "status", resp.StatusCode)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read body schema", "url", schemaURL, "error", err)
		return
	}
	if !gjson.ValidBytes(body) {
		c.logger.Warn("body schema is not valid JSON", "url", schemaURL)
		return
	}

	c.chains = collectFilePathChains(gjson.ParseBytes(body), nil)
	c.logger.Info("loaded body schema", "filePathFields", len(c.chains))
}

// collectFilePathChains walks a JSON schema node, descending through
// properties and items, and returns the property chains of every node
// marked x-file-path.
func collectFilePathChains(node gjson.Result, chain []string) [][]string {
	var out [][]string

	if node.Get("x-file-path").Bool() && len(chain) > 0 {
		out = append(out, append([]string(nil), chain...))
	}

	node.Get("properties").ForEach(func(key, value gjson.Result) bool {
		out = append(out, collectFilePathChains(value, append(chain, key.String()))...)
		return true
	})

	if items := node.Get("items"); items.IsObject() {
		out = append(out, collectFilePathChains(items, append(chain, arrayStep))...)
	}

	return out
}

func (c *Checker) Name() string { return "filepaths" }

func (c *Checker) ShouldInvalidate(changed []lsp.DocumentURI, p *project.Store) bool {
	return true
}

// Validate resolves every schema-declared path field of every planet
// config against the project root.
func (c *Checker) Validate(p *project.Store) []validate.FileDiagnostic {
	var out []validate.FileDiagnostic

	for _, file := range p.Files(project.CategoryPlanet) {
		if !gjson.Valid(file.Content) {
			continue
		}

		conv := lsp.NewPositionConverter(file.Content)
		root := gjson.Parse(file.Content)

		for _, chain := range c.chains {
			walkChain(root, 0, chain, func(value gjson.Result, offset int) {
				if value.Type != gjson.String {
					return
				}
				rel := value.String()
				full := filepath.Join(p.Root(), filepath.FromSlash(rel))
				if c.fs.Exists(full) {
					return
				}
				out = append(out, validate.NewFileDiagnostic(file, lsp.Diagnostic{
					Range:    conv.RangeFor(offset, offset+len(value.Raw)),
					Severity: lsp.DiagnosticSeverityError,
					Code:     validate.CodeConfigFilePathNotFound,
					Source:   validate.Source,
					Message:  fmt.Sprintf("File path %s not found", rel),
				}))
			})
		}
	}

	return out
}

// walkChain follows one property chain through a parsed document,
// expanding array wildcards, and calls fn with each terminal value and
// its absolute byte offset. Offsets of nested results are relative to
// the parent's raw text, so they accumulate along the walk.
func walkChain(node gjson.Result, base int, chain []string, fn func(gjson.Result, int)) {
	if len(chain) == 0 {
		fn(node, base)
		return
	}

	step, rest := chain[0], chain[1:]
	if step == arrayStep {
		if !node.IsArray() {
			return
		}
		node.ForEach(func(_, elem gjson.Result) bool {
			walkChain(elem, base+elem.Index, rest, fn)
			return true
		})
		return
	}

	next := node.Get(step)
	if !next.Exists() {
		return
	}
	walkChain(next, base+next.Index, rest, fn)
}
