package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/packforge/internal/recipe"
	"github.com/vk/packforge/internal/variant"
)

const rendererRecipe = `
context:
  name: demo
  version: "2.5.1"

package:
  name: ${{ name }}
  version: ${{ version }}

source:
  url: https://example.com/${{ name }}-${{ version }}.tar.gz
  sha256: "0000000000000000000000000000000000000000000000000000000000000000"

build:
  number: 3
  script:
    - ./configure --prefix=$PREFIX
    - if: platform == "win"
      then:
        - nmake install
      else:
        - make install

requirements:
  build:
    - ${{ compiler("c") }}
  host:
    - zlib
  run:
    - boost

tests:
  - imports: [demo]
`

func loadRendererRecipe(t *testing.T) *recipe.Recipe {
	t.Helper()
	r, err := recipe.Load([]byte(rendererRecipe))
	require.NoError(t, err)
	return r
}

func linuxPlatform() Platform {
	return Platform{Platform: "linux", TargetPlatform: "linux-64", Arch: "x86_64"}
}

func TestRenderFullRecipe(t *testing.T) {
	r := loadRendererRecipe(t)
	v := variant.New(map[string]string{
		"c_compiler":         "gcc",
		"c_compiler_version": "13",
		"boost":              "1.82.0",
	})
	pins := map[string]variant.Pin{"boost": {MaxPin: "x.x"}}

	rendered, err := Render(r, v, pins, linuxPlatform())
	require.NoError(t, err)

	assert.Equal(t, "demo", rendered.Name)
	assert.Equal(t, "2.5.1", rendered.Version)
	assert.Equal(t, 3, rendered.BuildNumber)
	assert.Equal(t, "https://example.com/demo-2.5.1.tar.gz", rendered.Source.URL)
	assert.Equal(t, []string{"gcc 13"}, rendered.Requirements.Build)
	assert.Equal(t, []string{"zlib"}, rendered.Requirements.Host)
	assert.Equal(t, []string{"boost 1.82"}, rendered.Requirements.Run)
	assert.Equal(t, []string{"./configure --prefix=$PREFIX", "make install"}, rendered.Script)
	require.Len(t, rendered.Tests, 1)
	assert.Equal(t, "imports", rendered.Tests[0].Kind())
	assert.NotEmpty(t, rendered.Hash)
}

func TestRenderPinConflict(t *testing.T) {
	doc := `
package:
  name: demo
  version: "1.0"
requirements:
  run:
    - boost 1.99
`
	r, err := recipe.Load([]byte(doc))
	require.NoError(t, err)

	v := variant.New(map[string]string{"boost": "1.82.0"})
	pins := map[string]variant.Pin{"boost": {MaxPin: "x.x"}}

	_, err = Render(r, v, pins, linuxPlatform())
	require.Error(t, err)

	var conflict *variant.PinConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "boost", conflict.Package)
	assert.Equal(t, "1.99", conflict.Explicit)
	assert.Equal(t, "1.82", conflict.Derived)
}

func TestRenderExplicitPinMatchingDerived(t *testing.T) {
	doc := `
package:
  name: demo
  version: "1.0"
requirements:
  run:
    - boost 1.82
`
	r, err := recipe.Load([]byte(doc))
	require.NoError(t, err)

	v := variant.New(map[string]string{"boost": "1.82.0"})
	pins := map[string]variant.Pin{"boost": {MaxPin: "x.x"}}

	rendered, err := Render(r, v, pins, linuxPlatform())
	require.NoError(t, err)
	assert.Equal(t, []string{"boost 1.82"}, rendered.Requirements.Run)
}

func TestRenderHashIgnoresRequirementOrder(t *testing.T) {
	docA := `
package:
  name: demo
  version: "1.0"
requirements:
  run: [alpha, beta]
`
	docB := `
package:
  name: demo
  version: "1.0"
requirements:
  run: [beta, alpha]
`
	a, err := recipe.Load([]byte(docA))
	require.NoError(t, err)
	b, err := recipe.Load([]byte(docB))
	require.NoError(t, err)

	ra, err := Render(a, variant.New(nil), nil, linuxPlatform())
	require.NoError(t, err)
	rb, err := Render(b, variant.New(nil), nil, linuxPlatform())
	require.NoError(t, err)

	assert.Equal(t, ra.Hash, rb.Hash)
}

func TestRenderHashSensitiveToScriptOrder(t *testing.T) {
	docA := `
package:
  name: demo
  version: "1.0"
build:
  script: [first, second]
`
	docB := `
package:
  name: demo
  version: "1.0"
build:
  script: [second, first]
`
	a, err := recipe.Load([]byte(docA))
	require.NoError(t, err)
	b, err := recipe.Load([]byte(docB))
	require.NoError(t, err)

	ra, err := Render(a, variant.New(nil), nil, linuxPlatform())
	require.NoError(t, err)
	rb, err := Render(b, variant.New(nil), nil, linuxPlatform())
	require.NoError(t, err)

	assert.NotEqual(t, ra.Hash, rb.Hash)
}

func TestRenderIdenticalAcrossUnusedKey(t *testing.T) {
	// Two variants differing only in a key the recipe never references must
	// render to the same content hash, so the orchestrator builds once.
	r := loadRendererRecipe(t)
	pins := map[string]variant.Pin{}

	base := map[string]string{
		"c_compiler":         "gcc",
		"c_compiler_version": "13",
		"boost":              "1.82.0",
	}
	withNoise := map[string]string{}
	for k, v := range base {
		withNoise[k] = v
	}
	withNoise["unused_key"] = "whatever"

	ra, err := Render(r, variant.New(base), pins, linuxPlatform())
	require.NoError(t, err)
	rb, err := Render(r, variant.New(withNoise), pins, linuxPlatform())
	require.NoError(t, err)

	assert.Equal(t, ra.Hash, rb.Hash)
}

func TestUsedKeys(t *testing.T) {
	r := loadRendererRecipe(t)
	used, err := UsedKeys(r)
	require.NoError(t, err)

	// compiler("c") implies both compiler keys.
	assert.True(t, used["c_compiler"])
	assert.True(t, used["c_compiler_version"])
	// Bare requirement names are key references too, so a config axis named
	// after the package varies it and pins can see the chosen value.
	assert.True(t, used["boost"])
	assert.True(t, used["zlib"])
	// Context names and platform facts are not variant keys.
	assert.False(t, used["name"])
	assert.False(t, used["version"])
	assert.False(t, used["platform"])
}

func TestUsedKeysSelectorsAndBothBranches(t *testing.T) {
	doc := `
package:
  name: demo
  version: "1.0"
build:
  script:
    - if: cuda != "none"
      then: ["echo ${{ cuda }}"]
      else: ["echo ${{ openmp }}"]
`
	r, err := recipe.Load([]byte(doc))
	require.NoError(t, err)

	used, err := UsedKeys(r)
	require.NoError(t, err)
	assert.True(t, used["cuda"])
	assert.True(t, used["openmp"])
}
