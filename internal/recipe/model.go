package recipe

// Recipe is the immutable in-memory form of one recipe document. It is
// loaded once and read-only thereafter; every selector-dependent field is a
// Node tree resolved per variant by the render package.
type Recipe struct {
	// Context is an ordered list of name -> expression entries. Entries may
	// reference earlier (or later) entries; the render package resolves them
	// in one topological pass.
	Context []ContextEntry

	Package      Package
	Source       Source
	Build        Build
	Requirements Requirements

	// Tests is a sequence node whose concrete items parse into TestSpecs.
	Tests Node

	// About carries informational metadata verbatim. It does not affect
	// variant resolution, rendering or testing.
	About map[string]string
}

// ContextEntry is one named template expression from the recipe's context
// section.
type ContextEntry struct {
	Name string
	Expr string
}

// Package identifies the package being built. Both fields may contain
// template expressions.
type Package struct {
	Name    string
	Version string
}

// Source describes where the package sources come from.
type Source struct {
	URL    string
	SHA256 string
}

// Build holds the build number and the build script tree. The script is a
// sequence node; conditional statements select per-platform fragments.
type Build struct {
	Number int
	Script Node
}

// Requirements holds the three requirement list trees.
type Requirements struct {
	Build Node
	Host  Node
	Run   Node
}
