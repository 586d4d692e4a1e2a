package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/packforge/internal/ctxlog"
	"github.com/vk/packforge/internal/fsutil"
	"github.com/vk/packforge/internal/orchestrator"
	"github.com/vk/packforge/internal/recipe"
	"github.com/vk/packforge/internal/variant"
)

// App encapsulates the application's dependencies, configuration and
// lifecycle: a loaded recipe, the variant configuration and the logger.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	recipe     *recipe.Recipe
	variantCfg *variant.Config
	collab     orchestrator.Collaborators
}

// New is the constructor for the main application. It loads the recipe and
// the variant configuration; a failure to load either is a fatal startup
// error.
func New(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// A directory recipe path is resolved to the recipe document inside it.
	if info, statErr := os.Stat(cfg.RecipePath); statErr == nil && info.IsDir() {
		path, ok, findErr := fsutil.FindRecipeFile(cfg.RecipePath)
		if findErr != nil {
			panic(fmt.Errorf("failed to locate recipe in %s: %w", cfg.RecipePath, findErr))
		}
		if !ok {
			panic(fmt.Errorf("no unambiguous recipe document found in %s", cfg.RecipePath))
		}
		cfg.RecipePath = path
		logger.Debug("Recipe path resolved from directory.", "path", path)
	}

	r, err := recipe.LoadFile(cfg.RecipePath)
	if err != nil {
		panic(fmt.Errorf("failed to load recipe: %w", err))
	}
	ctxlog.FromContext(ctx).Debug("Recipe loaded.", "path", cfg.RecipePath)

	variantCfg := &variant.Config{}
	if cfg.VariantPath != "" {
		variantCfg, err = variant.LoadConfigFile(cfg.VariantPath)
		if err != nil {
			panic(fmt.Errorf("failed to load variant config: %w", err))
		}
		logger.Debug("Variant config loaded.", "path", cfg.VariantPath, "keys", len(variantCfg.Keys))
	} else {
		logger.Debug("No variant config given, building the default variant only.")
	}

	return &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		recipe:     r,
		variantCfg: variantCfg,
	}
}

// SetCollaborators overrides the orchestrator's environment-facing
// dependencies. This is primarily for testing.
func (a *App) SetCollaborators(collab orchestrator.Collaborators) {
	a.collab = collab
}

// Recipe returns the loaded recipe. This is primarily for testing.
func (a *App) Recipe() *recipe.Recipe {
	return a.recipe
}

// recipeDir returns the directory the recipe was loaded from, used to
// resolve relative file references in test specs.
func (a *App) recipeDir() string {
	return filepath.Dir(a.config.RecipePath)
}
