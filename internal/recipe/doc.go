// Package recipe defines the immutable recipe data model: the package
// identity, source spec, build script, requirement lists and test
// specifications, with every selector-dependent field represented as an
// explicit conditional node tree. The tree is produced once by the YAML
// loader and read-only thereafter; rendering it against a concrete variant
// happens in the render package.
package recipe
