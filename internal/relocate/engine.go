package relocate

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/vk/packforge/internal/ctxlog"
)

// Engine rewrites build-prefix occurrences in produced files into the
// placeholder. Construct one per invocation with the reserved placeholder.
type Engine struct {
	placeholder string
}

// New creates an engine for the given reserved placeholder length.
func New(length int) (*Engine, error) {
	placeholder, err := Placeholder(length)
	if err != nil {
		return nil, err
	}
	return &Engine{placeholder: placeholder}, nil
}

// PlaceholderPath returns the engine's sentinel path.
func (e *Engine) PlaceholderPath() string {
	return e.placeholder
}

// Relocate walks every regular file under dir and replaces occurrences of
// the build prefix with the placeholder: text files by plain substitution,
// binary files by a same-length substitution that never changes the file's
// byte size. Re-running on already-relocated output is a no-op, since the
// placeholder does not contain the prefix.
//
// For binary rewriting the prefix must have been allocated with PadPrefix
// so its length equals the placeholder's.
func (e *Engine) Relocate(ctx context.Context, dir, prefix string) (*Manifest, error) {
	if len(prefix) > len(e.placeholder) {
		return nil, &PrefixLengthOverflowError{Prefix: prefix, Limit: len(e.placeholder)}
	}
	logger := ctxlog.FromContext(ctx)
	manifest := &Manifest{Placeholder: e.placeholder}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		record, err := e.relocateFile(path, prefix)
		if err != nil {
			return err
		}
		if record == nil {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		record.Path = rel
		logger.Debug("relocated file", "path", rel, "mode", record.Mode, "occurrences", record.Count)
		manifest.Files = append(manifest.Files, *record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("relocating %s: %w", dir, err)
	}
	return manifest, nil
}

// relocateFile rewrites one file in place. Returns nil when the prefix does
// not occur in it.
func (e *Engine) relocateFile(path, prefix string) (*FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	needle := []byte(prefix)
	count := bytes.Count(data, needle)
	if count == 0 {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	mode := Classify(data)
	var rewritten []byte
	switch mode {
	case ModeText:
		rewritten = bytes.ReplaceAll(data, needle, []byte(e.placeholder))
	case ModeBinary:
		rewritten, err = replaceSameLength(data, needle, []byte(e.placeholder))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(rewritten) != len(data) {
			// replaceSameLength guarantees this; fail rather than ship a
			// silently corrupted binary if it is ever broken.
			return nil, fmt.Errorf("%s: binary length changed during relocation", path)
		}
	}

	if err := os.WriteFile(path, rewritten, info.Mode().Perm()); err != nil {
		return nil, err
	}
	sum := blake3.Sum256(rewritten)
	return &FileRecord{Mode: mode, Count: count, Digest: hex.EncodeToString(sum[:])}, nil
}

// replaceSameLength substitutes old with new inside binary data without
// changing its length. A replacement shorter than the match is NUL-padded;
// a longer one cannot fit and is an error, which is why binary relocation
// requires the padded build prefix.
func replaceSameLength(data, old, new []byte) ([]byte, error) {
	if len(new) > len(old) {
		return nil, fmt.Errorf("replacement %q is longer than match %q; binary artifacts need a padded build prefix", new, old)
	}
	padded := make([]byte, len(old))
	copy(padded, new)
	return bytes.ReplaceAll(data, old, padded), nil
}
