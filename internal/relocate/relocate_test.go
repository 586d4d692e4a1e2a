package relocate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderExactLength(t *testing.T) {
	for _, length := range []int{len(placeholderBase), 64, 128, DefaultPrefixLength} {
		p, err := Placeholder(length)
		require.NoError(t, err)
		assert.Len(t, p, length)
		assert.True(t, len(p) >= len(placeholderBase))
	}
}

func TestPlaceholderTooShort(t *testing.T) {
	_, err := Placeholder(len(placeholderBase) - 1)
	require.Error(t, err)
}

func TestPadPrefix(t *testing.T) {
	root := "/tmp/bld"

	padded, err := PadPrefix(root, 64)
	require.NoError(t, err)
	assert.Len(t, padded, 64)
	assert.True(t, len(padded) > len(root))
	assert.Equal(t, root, padded[:len(root)])
	assert.Equal(t, byte('/'), padded[len(root)])

	same, err := PadPrefix(root, len(root))
	require.NoError(t, err)
	assert.Equal(t, root, same)

	one, err := PadPrefix(root, len(root)+1)
	require.NoError(t, err)
	assert.Equal(t, root+"_", one)
}

func TestPadPrefixOverflow(t *testing.T) {
	_, err := PadPrefix("/some/very/long/root", 5)
	require.Error(t, err)

	var overflow *PrefixLengthOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 5, overflow.Limit)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ModeText, Classify([]byte("#!/bin/sh\necho hi\n")))
	assert.Equal(t, ModeText, Classify(nil))
	assert.Equal(t, ModeBinary, Classify([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1}))
	assert.Equal(t, ModeBinary, Classify([]byte("MZ\x90\x00")))
	assert.Equal(t, ModeBinary, Classify([]byte{0xcf, 0xfa, 0xed, 0xfe}))
	assert.Equal(t, ModeBinary, Classify([]byte("plain text with a \x00 in it")))
}

func writeRelocateFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRelocateTextFile(t *testing.T) {
	dir := t.TempDir()
	prefix, err := PadPrefix("/tmp/bld", 64)
	require.NoError(t, err)

	script := "#!/bin/sh\nexec " + prefix + "/bin/tool \"$@\"\n"
	path := writeRelocateFixture(t, dir, "bin/wrapper", []byte(script))

	engine, err := New(64)
	require.NoError(t, err)

	manifest, err := engine.Relocate(context.Background(), dir, prefix)
	require.NoError(t, err)

	require.Len(t, manifest.Files, 1)
	assert.Equal(t, filepath.Join("bin", "wrapper"), manifest.Files[0].Path)
	assert.Equal(t, ModeText, manifest.Files[0].Mode)
	assert.Equal(t, 1, manifest.Files[0].Count)
	assert.Len(t, manifest.Files[0].Digest, 64)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(got), prefix)
	assert.Contains(t, string(got), engine.PlaceholderPath())
}

func TestRelocateBinaryPreservesLength(t *testing.T) {
	dir := t.TempDir()
	prefix, err := PadPrefix("/tmp/bld", 64)
	require.NoError(t, err)

	payload := append([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}, []byte("..."+prefix+"/lib\x00trailer")...)
	path := writeRelocateFixture(t, dir, "lib/libdemo.so", payload)

	engine, err := New(64)
	require.NoError(t, err)

	manifest, err := engine.Relocate(context.Background(), dir, prefix)
	require.NoError(t, err)

	require.Len(t, manifest.Files, 1)
	assert.Equal(t, ModeBinary, manifest.Files[0].Mode)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got, len(payload))
	assert.False(t, bytes.Contains(got, []byte(prefix)))
	assert.True(t, bytes.Contains(got, []byte(engine.PlaceholderPath())))
}

func TestRelocateSkipsUntouchedFiles(t *testing.T) {
	dir := t.TempDir()
	prefix, err := PadPrefix("/tmp/bld", 64)
	require.NoError(t, err)
	writeRelocateFixture(t, dir, "share/readme.txt", []byte("nothing to see here"))

	engine, err := New(64)
	require.NoError(t, err)

	manifest, err := engine.Relocate(context.Background(), dir, prefix)
	require.NoError(t, err)
	assert.Empty(t, manifest.Files)
}

func TestRelocateIdempotent(t *testing.T) {
	dir := t.TempDir()
	prefix, err := PadPrefix("/tmp/bld", 64)
	require.NoError(t, err)
	path := writeRelocateFixture(t, dir, "etc/config", []byte("root="+prefix+"\n"))

	engine, err := New(64)
	require.NoError(t, err)

	_, err = engine.Relocate(context.Background(), dir, prefix)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	again, err := engine.Relocate(context.Background(), dir, prefix)
	require.NoError(t, err)
	assert.Empty(t, again.Files)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRelocatePrefixOverflow(t *testing.T) {
	engine, err := New(64)
	require.NoError(t, err)

	long := "/an/unpadded/prefix/that/is/way/longer/than/the/reserved/placeholder/length"
	require.Greater(t, len(long), 64)

	_, err = engine.Relocate(context.Background(), t.TempDir(), long)
	require.Error(t, err)

	var overflow *PrefixLengthOverflowError
	require.ErrorAs(t, err, &overflow)
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{
		Placeholder: "/opt/packforge/placehold",
		Files: []FileRecord{
			{Path: "bin/tool", Mode: ModeBinary, Count: 2, Digest: "aa"},
			{Path: "etc/config", Mode: ModeText, Count: 1, Digest: "bb"},
		},
	}
	require.NoError(t, m.WriteFile(dir))

	got, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestInstallInverseSubstitution(t *testing.T) {
	dir := t.TempDir()
	engine, err := New(64)
	require.NoError(t, err)
	prefix, err := PadPrefix("/tmp/bld", 64)
	require.NoError(t, err)

	textPath := writeRelocateFixture(t, dir, "etc/config", []byte("root="+prefix+"\n"))
	binPayload := append([]byte{0x7f, 'E', 'L', 'F'}, []byte(prefix+"/lib\x00")...)
	binPath := writeRelocateFixture(t, dir, "lib/libdemo.so", binPayload)

	manifest, err := engine.Relocate(context.Background(), dir, prefix)
	require.NoError(t, err)
	require.Len(t, manifest.Files, 2)

	target := "/usr/local/demo"
	require.NoError(t, manifest.Install(context.Background(), dir, target))

	text, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.Equal(t, "root="+target+"\n", string(text))

	bin, err := os.ReadFile(binPath)
	require.NoError(t, err)
	assert.Len(t, bin, len(binPayload))
	assert.True(t, bytes.Contains(bin, []byte(target)))
	assert.False(t, bytes.Contains(bin, []byte(engine.PlaceholderPath())))
	// The shorter target is NUL padded inside binaries, so the string read
	// at install time terminates where the placeholder used to.
	idx := bytes.Index(bin, []byte(target))
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, byte(0), bin[idx+len(target)])
}

func TestInstallRejectsOversizedTarget(t *testing.T) {
	m := &Manifest{Placeholder: "/opt/pf"}
	err := m.Install(context.Background(), t.TempDir(), "/a/target/longer/than/the/placeholder")
	require.Error(t, err)

	var overflow *PrefixLengthOverflowError
	require.ErrorAs(t, err, &overflow)
}
