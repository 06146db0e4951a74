// Package validate orchestrates the project validators.
//
// Each validator answers two questions: does a given change invalidate my
// previous results, and what diagnostics does the current project state
// produce. The Runner holds the ordered validator list, re-runs the
// affected ones per change, and manages publishing and clearing of
// diagnostics against the client.
package validate
