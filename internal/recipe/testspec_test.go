package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestsFromYAML(t *testing.T, doc string) []TestSpec {
	t.Helper()
	r, err := Load([]byte("package:\n  name: demo\n  version: \"1.0\"\ntests:\n" + doc))
	require.NoError(t, err)
	specs, err := ParseTests(r.Tests)
	require.NoError(t, err)
	return specs
}

func TestParseImportsTest(t *testing.T) {
	specs := parseTestsFromYAML(t, `
  - imports: [demo, demo.core]
`)
	require.Len(t, specs, 1)

	imports, ok := specs[0].(ImportsTest)
	require.True(t, ok)
	assert.Equal(t, []string{"demo", "demo.core"}, imports.Imports)
	assert.Equal(t, "python", imports.Interpreter)
}

func TestParseImportsTestCustomInterpreter(t *testing.T) {
	specs := parseTestsFromYAML(t, `
  - imports: [demo]
    interpreter: python3.11
`)
	imports := specs[0].(ImportsTest)
	assert.Equal(t, "python3.11", imports.Interpreter)
}

func TestParseScriptTestShorthand(t *testing.T) {
	specs := parseTestsFromYAML(t, `
  - script: make check
`)
	script, ok := specs[0].(ScriptTest)
	require.True(t, ok)
	assert.Equal(t, []string{"make check"}, script.Content)
}

func TestParseScriptTestFull(t *testing.T) {
	specs := parseTestsFromYAML(t, `
  - script:
      content:
        - pytest -x
      interpreter: sh
      env:
        MODE: strict
      secrets:
        - API_TOKEN
`)
	script := specs[0].(ScriptTest)
	assert.Equal(t, []string{"pytest -x"}, script.Content)
	assert.Equal(t, "sh", script.Interpreter)
	assert.Equal(t, "strict", script.Env["MODE"])
	assert.Equal(t, []string{"API_TOKEN"}, script.Secrets)
}

func TestParseScriptTestContentFileExclusive(t *testing.T) {
	r, err := Load([]byte(`
package:
  name: demo
  version: "1.0"
tests:
  - script:
      content: [echo hi]
      file: run.sh
`))
	require.NoError(t, err)
	_, err = ParseTests(r.Tests)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")

	r, err = Load([]byte(`
package:
  name: demo
  version: "1.0"
tests:
  - script: {}
`))
	require.NoError(t, err)
	_, err = ParseTests(r.Tests)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs content or file")
}

func TestParseDownstreamTest(t *testing.T) {
	specs := parseTestsFromYAML(t, `
  - downstream: consumer-pkg
`)
	downstream, ok := specs[0].(DownstreamTest)
	require.True(t, ok)
	assert.Equal(t, "consumer-pkg", downstream.Package)
	assert.Equal(t, "downstream", downstream.Kind())
}

func TestParsePackageContentsTest(t *testing.T) {
	specs := parseTestsFromYAML(t, `
  - package_contents:
      files:
        exists:
          - bin/demo
      lib:
        - demo
      include:
        - demo.h
`)
	contents, ok := specs[0].(PackageContentsTest)
	require.True(t, ok)
	assert.Equal(t, []string{"bin/demo"}, contents.Exists)
	assert.Equal(t, []string{"demo"}, contents.Lib)
	assert.Equal(t, []string{"demo.h"}, contents.Include)
}

func TestParseTestsUnknownKind(t *testing.T) {
	r, err := Load([]byte(`
package:
  name: demo
  version: "1.0"
tests:
  - benchmark: [demo]
`))
	require.NoError(t, err)
	_, err = ParseTests(r.Tests)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized test kind")
}

func TestParseTestsNil(t *testing.T) {
	specs, err := ParseTests(nil)
	require.NoError(t, err)
	assert.Empty(t, specs)
}
