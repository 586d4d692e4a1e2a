// Package variant expands the build-variant key space into a deduplicated,
// ordered set of concrete variants. Zip-key groups co-vary positionally
// instead of being cross-multiplied, and pin_run_as_build entries derive
// runtime version pins from the build-time chosen values. The matrix is
// computed once per invocation as a strict pre-pass; rendering never
// recomputes it.
package variant
