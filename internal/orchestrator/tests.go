package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/packforge/internal/buildenv"
	"github.com/vk/packforge/internal/ctxlog"
	"github.com/vk/packforge/internal/recipe"
)

// DownstreamBuilder builds a dependent package against a freshly built one,
// so downstream tests can verify nothing broke below them. Invocations
// without one record downstream tests as skipped.
type DownstreamBuilder interface {
	Build(ctx context.Context, pkg string) error
}

// testRunner executes the rendered test specs of one built variant.
type testRunner struct {
	executor   buildenv.Executor
	downstream DownstreamBuilder
	// platform selects the library and header layout package_contents
	// checks expect, e.g. lib/libfoo.so on linux versus Library/bin/foo.dll
	// on win.
	platform string
	// recipeDir anchors script test files referenced by relative path.
	recipeDir string
}

// runAll executes every spec against the built prefix. All specs run even
// after a failure, so the report shows the full picture.
func (t *testRunner) runAll(ctx context.Context, specs []recipe.TestSpec, prefix string, env map[string]string) []TestResult {
	logger := ctxlog.FromContext(ctx)
	results := make([]TestResult, 0, len(specs))
	for _, spec := range specs {
		result := t.run(ctx, spec, prefix, env)
		logger.Debug("test finished", "kind", result.Kind, "status", result.Status)
		results = append(results, result)
	}
	return results
}

func (t *testRunner) run(ctx context.Context, spec recipe.TestSpec, prefix string, env map[string]string) TestResult {
	result := TestResult{Kind: spec.Kind(), Status: TestPassed}

	var err error
	switch s := spec.(type) {
	case recipe.ImportsTest:
		err = t.runImports(ctx, s, prefix, env)
	case recipe.ScriptTest:
		err = t.runScript(ctx, s, prefix, env)
	case recipe.PackageContentsTest:
		err = t.checkContents(s, prefix)
	case recipe.DownstreamTest:
		if t.downstream == nil {
			result.Status = TestSkipped
			result.Detail = fmt.Sprintf("no downstream builder configured for %s", s.Package)
			return result
		}
		err = t.downstream.Build(ctx, s.Package)
	default:
		err = fmt.Errorf("unsupported test kind %q", spec.Kind())
	}

	if err != nil {
		result.Status = TestFailed
		result.Detail = err.Error()
	}
	return result
}

// runImports checks each module with a one-liner under the interpreter.
func (t *testRunner) runImports(ctx context.Context, spec recipe.ImportsTest, prefix string, env map[string]string) error {
	for _, module := range spec.Imports {
		line := fmt.Sprintf("%s -c 'import %s'", spec.Interpreter, module)
		if out, err := t.executor.Run(ctx, []string{line}, prefix, env); err != nil {
			return fmt.Errorf("import %s failed: %w\n%s", module, err, out)
		}
	}
	return nil
}

// runScript stages the script and runs it with the configured interpreter.
// Inline content without an interpreter runs directly through the shell.
func (t *testRunner) runScript(ctx context.Context, spec recipe.ScriptTest, prefix string, env map[string]string) error {
	merged := make(map[string]string, len(env)+len(spec.Env)+len(spec.Secrets))
	for k, v := range env {
		merged[k] = v
	}
	for k, v := range spec.Env {
		merged[k] = v
	}
	for _, secret := range spec.Secrets {
		value, ok := os.LookupEnv(secret)
		if !ok {
			return fmt.Errorf("secret %s is not set in the environment", secret)
		}
		merged[secret] = value
	}

	var script []string
	switch {
	case spec.File != "":
		path := spec.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(t.recipeDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("script test file: %w", err)
		}
		interpreter := spec.Interpreter
		if interpreter == "" {
			interpreter = "sh"
		}
		script = []string{fmt.Sprintf("%s %s", interpreter, path)}
	case spec.Interpreter != "":
		staged, err := stageScript(spec.Content)
		if err != nil {
			return err
		}
		defer os.Remove(staged)
		script = []string{fmt.Sprintf("%s %s", spec.Interpreter, staged)}
	default:
		script = spec.Content
	}

	if out, err := t.executor.Run(ctx, script, prefix, merged); err != nil {
		return fmt.Errorf("test script failed: %w\n%s", err, out)
	}
	return nil
}

// stageScript writes inline content to a temp file for an interpreter run.
func stageScript(content []string) (string, error) {
	file, err := os.CreateTemp("", "packforge-test-*")
	if err != nil {
		return "", err
	}
	if _, err := file.WriteString(strings.Join(content, "\n") + "\n"); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// checkContents verifies the built prefix tree contains what the spec names.
func (t *testRunner) checkContents(spec recipe.PackageContentsTest, prefix string) error {
	var missing []string

	for _, pattern := range spec.Exists {
		matches, err := filepath.Glob(filepath.Join(prefix, filepath.FromSlash(pattern)))
		if err != nil {
			return fmt.Errorf("bad files pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			missing = append(missing, pattern)
		}
	}
	for _, lib := range spec.Lib {
		if !anyGlob(prefix, libPatterns(t.platform, lib)) {
			missing = append(missing, "lib "+lib)
		}
	}
	for _, include := range spec.Include {
		if !anyGlob(prefix, includePatterns(t.platform, include)) {
			missing = append(missing, "include "+include)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("package contents missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func anyGlob(prefix string, patterns []string) bool {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(prefix, filepath.FromSlash(pattern)))
		if err == nil && len(matches) > 0 {
			return true
		}
	}
	return false
}

// libPatterns expands a bare library name into the platform's conventional
// shared and static library locations.
func libPatterns(platform, name string) []string {
	switch platform {
	case "win":
		return []string{
			"Library/bin/" + name + ".dll",
			"Library/lib/" + name + ".lib",
		}
	case "osx":
		return []string{
			"lib/lib" + name + ".dylib",
			"lib/lib" + name + ".*.dylib",
			"lib/lib" + name + ".a",
		}
	default:
		return []string{
			"lib/lib" + name + ".so",
			"lib/lib" + name + ".so.*",
			"lib/lib" + name + ".a",
		}
	}
}

// includePatterns expands a header name or directory per platform layout.
func includePatterns(platform, name string) []string {
	if platform == "win" {
		return []string{
			"Library/include/" + name,
			"include/" + name,
		}
	}
	return []string{"include/" + name}
}
