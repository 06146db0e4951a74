package shiplog

import (
	"log/slog"
	"path"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nhmods/horizon-ls/internal/basegame"
	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project"
)

// NamePlaceholder is shown for entries that declare no name.
const NamePlaceholder = "(No Name)"

// defaultStarSystem is assumed when a planet config declares none.
const defaultStarSystem = "SolarSystem"

// IDRecord is one occurrence of a declared or referenced identifier,
// anchored to its source document for diagnostics. Records are rebuilt on
// every validation pass.
type IDRecord struct {
	Value string
	File  lsp.VersionedTextDocumentIdentifier
	Range lsp.Range
}

// Entry is a derived, de-duplicated record of one ship-log entry.
type Entry struct {
	ID          string            `json:"id"`
	AstroObject string            `json:"astroObject"`
	Name        string            `json:"name"`
	Position    *basegame.Vector2 `json:"position,omitempty"`
	Parent      string            `json:"parent,omitempty"`
	Curiosity   string            `json:"curiosity,omitempty"`
	Facts       []string          `json:"facts,omitempty"`
}

// Context holds the identifier registries and the derived entry index for
// one validation pass over the project.
type Context struct {
	dataset *basegame.Dataset
	logger  *slog.Logger

	astroObjectIDs []IDRecord
	entryIDs       []IDRecord
	factIDs        []IDRecord
	curiosityRefs  []IDRecord
	sourceIDRefs   []IDRecord

	// From star system configs.
	systemNames         []string
	positions           map[string]*basegame.Vector2
	declaredCuriosities map[string]bool

	// From planet configs and ship-log documents.
	systemShipLogs map[string][]string // system name -> relative xml paths
	pathToAstro    map[string]string   // relative xml path -> astro object id

	entries map[string]*Entry
}

// BuildContext derives a fresh Context from the current project state.
// Parse failures are logged and contribute nothing; the build always
// completes.
func BuildContext(p *project.Store, dataset *basegame.Dataset, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Context{
		dataset:             dataset,
		logger:              logger,
		positions:           make(map[string]*basegame.Vector2),
		declaredCuriosities: make(map[string]bool),
		systemShipLogs:      make(map[string][]string),
		pathToAstro:         make(map[string]string),
		entries:             make(map[string]*Entry),
	}

	for _, file := range p.Files(project.CategorySystem) {
		c.readSystemConfig(p, file)
	}
	for _, file := range p.Files(project.CategoryPlanet) {
		c.readPlanetConfig(file)
	}
	for _, file := range p.Files(project.CategoryShipLog) {
		if err := c.parseShipLog(p, file); err != nil {
			logger.Warn("failed to parse ship log", "uri", file.URI, "error", err)
		}
	}

	c.mergeBaseGame()
	return c
}

// readSystemConfig collects entry positions and declared curiosities from
// one star system config. The system name is the file name without its
// .json extension.
func (c *Context) readSystemConfig(p *project.Store, file *project.TrackedFile) {
	name := strings.TrimSuffix(path.Base(p.RelPath(file)), ".json")
	c.systemNames = append(c.systemNames, name)

	if !gjson.Valid(file.Content) {
		c.logger.Warn("skipping malformed system config", "uri", file.URI)
		return
	}

	gjson.Get(file.Content, "entryPositions").ForEach(func(_, v gjson.Result) bool {
		id := v.Get("id").String()
		if id == "" {
			return true
		}
		c.positions[id] = &basegame.Vector2{
			X: v.Get("position.x").Float(),
			Y: v.Get("position.y").Float(),
		}
		return true
	})

	gjson.Get(file.Content, "curiosities").ForEach(func(_, v gjson.Result) bool {
		if id := v.Get("id").String(); id != "" {
			c.declaredCuriosities[id] = true
		}
		return true
	})
}

// readPlanetConfig records the owning star system of the planet's
// ship-log document, if it declares one.
func (c *Context) readPlanetConfig(file *project.TrackedFile) {
	if !gjson.Valid(file.Content) {
		return
	}

	xmlFile := gjson.Get(file.Content, "ShipLog.xmlFile")
	if xmlFile.Type != gjson.String {
		return
	}

	system := defaultStarSystem
	if s := gjson.Get(file.Content, "starSystem"); s.Type == gjson.String {
		system = s.String()
	}

	rel := path.Clean(strings.ReplaceAll(xmlFile.String(), "\\", "/"))
	c.systemShipLogs[system] = append(c.systemShipLogs[system], rel)
}

// mergeBaseGame adds the base-game entries to the index. Project entries
// are never overwritten by baseline ones.
func (c *Context) mergeBaseGame() {
	for _, base := range c.dataset.Entries() {
		if _, exists := c.entries[base.ID]; exists {
			continue
		}
		c.entries[base.ID] = &Entry{
			ID:          base.ID,
			AstroObject: base.AstroObject,
			Name:        base.Name,
			Curiosity:   base.Curiosity,
			Position:    base.Position,
		}
	}
}

// Entries returns the derived entry index.
func (c *Context) Entries() map[string]*Entry {
	return c.entries
}
