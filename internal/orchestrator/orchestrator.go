// Package orchestrator turns a resolved variant matrix into built packages.
// It renders each variant, deduplicates identical rendered recipes by
// content hash, executes the build script inside a padded prefix, relocates
// the outputs, runs the recipe's tests and archives the result, all on a
// bounded worker pool.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/vk/packforge/internal/buildenv"
	"github.com/vk/packforge/internal/ctxlog"
	"github.com/vk/packforge/internal/recipe"
	"github.com/vk/packforge/internal/relocate"
	"github.com/vk/packforge/internal/render"
	"github.com/vk/packforge/internal/variant"
)

// Config holds the knobs of one orchestrator invocation.
type Config struct {
	// Workers bounds build concurrency. Zero or negative means 1.
	Workers int
	// WorkDir hosts the per-build padded prefixes and source checkouts.
	WorkDir string
	// OutputDir receives the package archives and their manifests.
	OutputDir string
	// PrefixLength is the reserved placeholder length every build prefix is
	// padded to. Zero means relocate.DefaultPrefixLength.
	PrefixLength int
	// FailFast cancels remaining variants after the first failure.
	FailFast bool
	// Platform supplies the rendering facts (platform, target_platform, arch).
	Platform render.Platform
	// RecipeDir anchors relative file references in script tests.
	RecipeDir string
}

// Collaborators are the environment-facing dependencies. Nil fields get the
// local defaults; a nil Downstream records downstream tests as skipped.
type Collaborators struct {
	Executor   buildenv.Executor
	Fetcher    buildenv.SourceFetcher
	Archiver   buildenv.Archiver
	Downstream DownstreamBuilder
}

// Orchestrator coordinates the build of a whole variant matrix.
type Orchestrator struct {
	cfg       Config
	executor  buildenv.Executor
	fetcher   buildenv.SourceFetcher
	archiver  buildenv.Archiver
	relocator *relocate.Engine
	tests     *testRunner
}

// New creates an orchestrator, filling unset collaborators with the local
// implementations.
func New(cfg Config, collab Collaborators) (*Orchestrator, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.PrefixLength == 0 {
		cfg.PrefixLength = relocate.DefaultPrefixLength
	}
	if collab.Executor == nil {
		collab.Executor = buildenv.NewLocalExecutor()
	}
	if collab.Fetcher == nil {
		collab.Fetcher = buildenv.NewHTTPFetcher()
	}
	if collab.Archiver == nil {
		collab.Archiver = buildenv.NewZstdArchiver()
	}

	relocator, err := relocate.New(cfg.PrefixLength)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:       cfg,
		executor:  collab.Executor,
		fetcher:   collab.Fetcher,
		archiver:  collab.Archiver,
		relocator: relocator,
		tests: &testRunner{
			executor:   collab.Executor,
			downstream: collab.Downstream,
			platform:   cfg.Platform.Platform,
			recipeDir:  cfg.RecipeDir,
		},
	}, nil
}

// Run builds every variant in the matrix and returns the per-variant report
// in matrix order. Individual build failures land in the report; Run itself
// only errors on systemic problems such as a work dir too long for the
// reserved prefix length.
func (o *Orchestrator) Run(ctx context.Context, r *recipe.Recipe, matrix variant.Matrix, pins map[string]variant.Pin) (*Report, error) {
	// Build roots are WorkDir/<32 hex chars>. Reject the whole invocation
	// up front if they cannot fit inside the reserved placeholder length.
	probe := filepath.Join(o.cfg.WorkDir, strings.Repeat("0", 32))
	if _, err := relocate.PadPrefix(probe, o.cfg.PrefixLength); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(o.cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("starting builds", "variants", len(matrix.Variants), "workers", o.cfg.Workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cache := newBuildCache()
	results := make([]Result, len(matrix.Variants))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for workerID := 0; workerID < o.cfg.Workers; workerID++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerLogger := logger.With("workerID", workerID)
			for i := range jobs {
				results[i] = o.buildVariant(ctx, r, matrix.Variants[i], pins, cache)
				workerLogger.Debug("variant finished",
					"variant", matrix.Variants[i].String(),
					"status", results[i].Status)
				if results[i].Status == StatusFailed && o.cfg.FailFast {
					cancel()
				}
			}
		}(workerID)
	}

	for i := range matrix.Variants {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report := &Report{Results: results}
	counts := report.Counts()
	logger.Info("builds finished",
		"built", counts[StatusBuilt],
		"cached", counts[StatusCached],
		"failed", counts[StatusFailed],
		"cancelled", counts[StatusCancelled])
	return report, nil
}

// buildVariant renders one variant and either runs its build or reuses the
// outcome of an identical rendered recipe already claimed by another worker.
func (o *Orchestrator) buildVariant(ctx context.Context, r *recipe.Recipe, v variant.Variant, pins map[string]variant.Pin, cache *buildCache) Result {
	result := Result{Variant: v}
	if ctx.Err() != nil {
		result.Status = StatusCancelled
		result.Err = ctx.Err()
		return result
	}

	rendered, err := render.Render(r, v, pins, o.cfg.Platform)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	result.Hash = rendered.Hash

	entry, leader := cache.acquire(rendered.Hash)
	if !leader {
		select {
		case <-entry.done:
		case <-ctx.Done():
			result.Status = StatusCancelled
			result.Err = ctx.Err()
			return result
		}
		if entry.err != nil {
			result.Status = StatusFailed
			result.Err = entry.err
			return result
		}
		result.Status = StatusCached
		result.ArchivePath = entry.output.archivePath
		result.Tests = entry.output.tests
		return result
	}

	output, buildOutputText, buildErr := o.execute(ctx, rendered)
	entry.complete(output, buildErr)

	result.Output = buildOutputText
	if buildErr != nil {
		if ctx.Err() != nil {
			result.Status = StatusCancelled
		} else {
			result.Status = StatusFailed
		}
		result.Err = buildErr
		if output != nil {
			result.Tests = output.tests
		}
		return result
	}
	result.Status = StatusBuilt
	result.ArchivePath = output.archivePath
	result.Tests = output.tests
	return result
}

// execute runs the full pipeline for one rendered recipe: fetch, build,
// relocate, test, archive. A cancelled build returns before relocation so a
// half-written prefix is never packaged.
func (o *Orchestrator) execute(ctx context.Context, rendered *render.Rendered) (*buildOutput, string, error) {
	prefix, err := relocate.PadPrefix(filepath.Join(o.cfg.WorkDir, rendered.Hash), o.cfg.PrefixLength)
	if err != nil {
		return nil, "", err
	}
	srcDir := filepath.Join(o.cfg.WorkDir, rendered.Hash+"-src")
	if err := os.MkdirAll(prefix, 0o755); err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return nil, "", err
	}

	if rendered.Source.URL != "" {
		if err := o.fetcher.Fetch(ctx, rendered.Source.URL, rendered.Source.SHA256, srcDir); err != nil {
			return nil, "", fmt.Errorf("fetching source: %w", err)
		}
	}

	env := buildEnv(rendered, prefix, srcDir)
	scriptOutput, err := o.executor.Run(ctx, rendered.Script, srcDir, env)
	if err != nil {
		return nil, scriptOutput, err
	}
	if ctx.Err() != nil {
		return nil, scriptOutput, ctx.Err()
	}

	manifest, err := o.relocator.Relocate(ctx, prefix, prefix)
	if err != nil {
		return nil, scriptOutput, fmt.Errorf("relocating outputs: %w", err)
	}
	if err := manifest.WriteFile(prefix); err != nil {
		return nil, scriptOutput, err
	}

	tests := o.tests.runAll(ctx, rendered.Tests, prefix, env)
	output := &buildOutput{tests: tests}
	if failures := countTestFailures(tests); failures > 0 {
		return output, scriptOutput, fmt.Errorf("%w: %d of %d", ErrTestFailed, failures, len(tests))
	}

	archivePath := filepath.Join(o.cfg.OutputDir, archiveName(rendered))
	if err := o.archiver.Archive(ctx, prefix, archivePath); err != nil {
		return output, scriptOutput, fmt.Errorf("archiving: %w", err)
	}
	output.archivePath = archivePath
	return output, scriptOutput, nil
}

// buildEnv assembles the script environment: package identity, the padded
// prefix and the source dir. Variant values reach the script through
// template expansion only; the environment never carries anything outside
// the rendered content hash, so deduplicated builds stay interchangeable.
func buildEnv(rendered *render.Rendered, prefix, srcDir string) map[string]string {
	return map[string]string{
		"PREFIX":       prefix,
		"SRC_DIR":      srcDir,
		"PKG_NAME":     rendered.Name,
		"PKG_VERSION":  rendered.Version,
		"PKG_BUILDNUM": strconv.Itoa(rendered.BuildNumber),
	}
}

func archiveName(rendered *render.Rendered) string {
	return fmt.Sprintf("%s-%s-%d-%s.tar.zst", rendered.Name, rendered.Version, rendered.BuildNumber, rendered.Hash[:8])
}

func countTestFailures(tests []TestResult) int {
	failures := 0
	for _, t := range tests {
		if t.Status == TestFailed {
			failures++
		}
	}
	return failures
}
