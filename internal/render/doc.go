// Package render resolves a recipe against one concrete variant. It expands
// the `${{ ... }}` template expressions, evaluates conditional branches
// through the selector package, splices chosen branches into their parent
// sequences and produces a fully concrete build plan with a content hash
// used for build deduplication.
//
// Every render call is a pure function of the node and an explicit
// variant-plus-context environment; there is no ambient global state.
package render
