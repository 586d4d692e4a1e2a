// Package app is the composition root: it owns configuration, the logger
// and the wiring from loaded recipe and variant config through matrix
// resolution to the orchestrator.
package app
