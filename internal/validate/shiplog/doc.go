// Package shiplog implements the cross-reference validation engine for
// ship-log XML documents.
//
// A Context is rebuilt from the project on every run: it parses the
// ship-log documents, collects identifier registries for the three
// namespaces (astro objects, entries, facts), correlates them with the
// star system configs and the base-game catalogue, and derives the entry
// index behind the getSystems/getEntriesForSystem queries. Validate runs
// the rule set over the registries and yields positioned diagnostics.
package shiplog
