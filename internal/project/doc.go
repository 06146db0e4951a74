// Package project owns the tracked files of a New Horizons mod project.
//
// A Store holds five categories of tracked files: planet configs, star
// system configs, ship-log XML documents, dialogue trees, and translator
// text documents. Disk-sourced files carry version 0; editor buffers
// overlay them with higher versions via Open and revert on Close.
package project
