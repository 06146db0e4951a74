package shiplog

import "slices"

// Systems returns every known star system name, sorted. A system is known
// if a config file declares it or a planet config assigns a ship log to
// it.
func (c *Context) Systems() []string {
	names := slices.Clone(c.systemNames)
	for name := range c.systemShipLogs {
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// EntriesForSystem returns every entry belonging to the named system's
// astro objects, including the base game's. ok is false when the system
// name is not mapped to any ship-log document and not a declared system.
func (c *Context) EntriesForSystem(name string) ([]*Entry, bool) {
	paths, mapped := c.systemShipLogs[name]
	if !mapped && !slices.Contains(c.systemNames, name) {
		return nil, false
	}

	astro := make(map[string]bool)
	for _, p := range paths {
		if id, ok := c.pathToAstro[p]; ok {
			astro[id] = true
		}
	}
	for _, id := range c.dataset.AstroObjects() {
		astro[id] = true
	}

	var out []*Entry
	for _, e := range c.entries {
		if astro[e.AstroObject] {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, true
}
