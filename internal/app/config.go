package app

import (
	"errors"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RecipePath  string // recipe.yaml
	VariantPath string // variants.yaml, optional

	OutputDir    string
	WorkDir      string
	Workers      int
	PrefixLength int
	FailFast     bool

	Platform       string
	TargetPlatform string
	Arch           string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and fills the platform and directory
// defaults: host platform facts, XDG-conventional work and output dirs.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RecipePath == "" {
		return nil, errors.New("RecipePath is a required configuration field and cannot be empty")
	}
	if cfg.Platform == "" {
		cfg.Platform = hostPlatform()
	}
	if cfg.Arch == "" {
		cfg.Arch = hostArch()
	}
	if cfg.TargetPlatform == "" {
		cfg.TargetPlatform = defaultTargetPlatform(cfg.Platform, cfg.Arch)
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = filepath.Join(xdg.CacheHome, "packforge", "work")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(xdg.DataHome, "packforge", "output")
	}
	return &cfg, nil
}

func hostPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	case "windows":
		return "win"
	default:
		return "linux"
	}
}

func hostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	default:
		return runtime.GOARCH
	}
}

// defaultTargetPlatform mirrors the conventional subdir naming, e.g.
// linux-64, osx-arm64, win-64.
func defaultTargetPlatform(platform, arch string) string {
	switch arch {
	case "x86_64":
		return platform + "-64"
	case "aarch64":
		if platform == "linux" {
			return "linux-aarch64"
		}
		return platform + "-arm64"
	default:
		return platform + "-" + arch
	}
}
