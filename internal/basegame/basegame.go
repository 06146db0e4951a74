// Package basegame holds the static catalogue of the base game: reserved
// identifiers and the ship-log entries every mod inherits. It is read-only
// reference data for collision and reference checks.
package basegame

import (
	_ "embed"
	"sync"

	"github.com/tidwall/gjson"
)

//go:embed basegame.json
var rawCatalogue []byte

// Vector2 is a 2D ship-log map position.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entry is one base-game ship-log entry.
type Entry struct {
	ID          string
	AstroObject string
	Name        string
	Curiosity   string
	Position    *Vector2
}

// Dataset is the immutable base-game catalogue.
type Dataset struct {
	astroObjects map[string]bool
	curiosities  map[string]bool
	entryIDs     map[string]bool
	factIDs      map[string]bool
	entries      []Entry
}

var (
	defaultOnce sync.Once
	defaultSet  *Dataset
)

// Default returns the catalogue shipped with the server.
// It is loaded once and shared process-wide.
func Default() *Dataset {
	defaultOnce.Do(func() {
		defaultSet = Load(rawCatalogue)
	})
	return defaultSet
}

// Load parses a catalogue from JSON. Intended for Default and for tests
// that need a reduced dataset.
func Load(raw []byte) *Dataset {
	ds := &Dataset{
		astroObjects: make(map[string]bool),
		curiosities:  make(map[string]bool),
		entryIDs:     make(map[string]bool),
		factIDs:      make(map[string]bool),
	}

	doc := gjson.ParseBytes(raw)

	doc.Get("astroObjects").ForEach(func(_, v gjson.Result) bool {
		ds.astroObjects[v.String()] = true
		return true
	})
	doc.Get("curiosities").ForEach(func(_, v gjson.Result) bool {
		ds.curiosities[v.String()] = true
		return true
	})
	doc.Get("factIds").ForEach(func(_, v gjson.Result) bool {
		ds.factIDs[v.String()] = true
		return true
	})
	doc.Get("entries").ForEach(func(_, v gjson.Result) bool {
		entry := Entry{
			ID:          v.Get("id").String(),
			AstroObject: v.Get("astroObject").String(),
			Name:        v.Get("name").String(),
			Curiosity:   v.Get("curiosity").String(),
		}
		if pos := v.Get("position"); pos.Exists() {
			entry.Position = &Vector2{
				X: pos.Get("x").Float(),
				Y: pos.Get("y").Float(),
			}
		}
		ds.entries = append(ds.entries, entry)
		ds.entryIDs[entry.ID] = true
		return true
	})

	return ds
}

// IsAstroObject reports whether id is a base-game astro object.
func (ds *Dataset) IsAstroObject(id string) bool { return ds.astroObjects[id] }

// IsCuriosity reports whether id is a built-in curiosity tag.
func (ds *Dataset) IsCuriosity(id string) bool { return ds.curiosities[id] }

// IsReservedEntryID reports whether id collides with a base-game entry.
func (ds *Dataset) IsReservedEntryID(id string) bool { return ds.entryIDs[id] }

// IsReservedFactID reports whether id collides with a base-game fact.
func (ds *Dataset) IsReservedFactID(id string) bool { return ds.factIDs[id] }

// AstroObjects returns the base-game astro object ids.
func (ds *Dataset) AstroObjects() []string {
	out := make([]string, 0, len(ds.astroObjects))
	for id := range ds.astroObjects {
		out = append(out, id)
	}
	return out
}

// Entries returns the base-game ship-log entries.
func (ds *Dataset) Entries() []Entry {
	return ds.entries
}
