package relocate

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/packforge/internal/ctxlog"
)

// ManifestName is the file the manifest is stored under inside a package.
const ManifestName = "relocation.yaml"

// FileRecord describes one relocated file. The digest covers the rewritten
// content, so unpacked packages can be verified before installation.
type FileRecord struct {
	Path   string `yaml:"path"`
	Mode   Mode   `yaml:"mode"`
	Count  int    `yaml:"count"`
	Digest string `yaml:"digest"`
}

// Manifest lists every file that carried the build prefix, with the mode it
// was rewritten in. Installation replays the inverse substitution from it
// instead of rescanning the package.
type Manifest struct {
	Placeholder string       `yaml:"placeholder"`
	Files       []FileRecord `yaml:"files,omitempty"`
}

// WriteFile stores the manifest under dir.
func (m *Manifest) WriteFile(dir string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding relocation manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644)
}

// ReadManifest loads the manifest stored under dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding relocation manifest: %w", err)
	}
	return &m, nil
}

// Install applies the inverse substitution to an unpacked package rooted at
// dir: every manifest file has the placeholder rewritten to targetPrefix in
// the mode recorded at build time. The target prefix must not exceed the
// placeholder length, since binary files cannot grow.
func (m *Manifest) Install(ctx context.Context, dir, targetPrefix string) error {
	if len(targetPrefix) > len(m.Placeholder) {
		return &PrefixLengthOverflowError{Prefix: targetPrefix, Limit: len(m.Placeholder)}
	}
	logger := ctxlog.FromContext(ctx)
	needle := []byte(m.Placeholder)

	for _, record := range m.Files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		path := filepath.Join(dir, filepath.FromSlash(record.Path))
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		var rewritten []byte
		switch record.Mode {
		case ModeText:
			rewritten = bytes.ReplaceAll(data, needle, []byte(targetPrefix))
		case ModeBinary:
			rewritten, err = replaceSameLength(data, needle, []byte(targetPrefix))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		default:
			return fmt.Errorf("%s: unknown relocation mode %q", record.Path, record.Mode)
		}

		if err := os.WriteFile(path, rewritten, info.Mode().Perm()); err != nil {
			return err
		}
		logger.Debug("installed file", "path", record.Path, "mode", record.Mode)
	}
	return nil
}
