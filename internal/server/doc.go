// Package server runs the language server event loop. All protocol
// handling, project mutation, and validation happens on one goroutine;
// transport reads and watcher events are funneled into it over channels,
// so the Project Store needs no locking.
package server
