// Package buildenv defines the collaborators a build needs from its host
// environment: running scripts, fetching sources and packing outputs. The
// orchestrator depends only on these interfaces; the local implementations
// in this package are the working defaults.
package buildenv

import "context"

// Executor runs a build or test script inside a working directory with a
// prepared environment. Output is the combined stdout and stderr, returned
// even when the script fails.
type Executor interface {
	Run(ctx context.Context, script []string, dir string, env map[string]string) (output string, err error)
}

// SourceFetcher materializes a recipe source into destDir and verifies its
// checksum before handing it to the build.
type SourceFetcher interface {
	Fetch(ctx context.Context, url, sha256 string, destDir string) error
}

// Archiver packs a relocated prefix tree into a package archive at dest.
type Archiver interface {
	Archive(ctx context.Context, dir, dest string) error
}
