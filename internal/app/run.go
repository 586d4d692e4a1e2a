package app

import (
	"context"
	"fmt"

	"github.com/vk/packforge/internal/ctxlog"
	"github.com/vk/packforge/internal/orchestrator"
	"github.com/vk/packforge/internal/render"
	"github.com/vk/packforge/internal/variant"
)

// Run executes the main application logic: static analysis of the recipe's
// referenced variant keys, matrix resolution and the orchestrated build of
// every variant.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	used, err := render.UsedKeys(a.recipe)
	if err != nil {
		return fmt.Errorf("analyzing recipe: %w", err)
	}
	a.logger.Debug("Referenced variant keys collected.", "count", len(used))

	matrix, err := variant.Resolve(a.variantCfg, used)
	if err != nil {
		return fmt.Errorf("resolving variant matrix: %w", err)
	}
	a.logger.Info("Variant matrix resolved.", "variants", len(matrix.Variants))

	platform := render.Platform{
		Platform:       a.config.Platform,
		TargetPlatform: a.config.TargetPlatform,
		Arch:           a.config.Arch,
	}
	orch, err := orchestrator.New(orchestrator.Config{
		Workers:      a.config.Workers,
		WorkDir:      a.config.WorkDir,
		OutputDir:    a.config.OutputDir,
		PrefixLength: a.config.PrefixLength,
		FailFast:     a.config.FailFast,
		Platform:     platform,
		RecipeDir:    a.recipeDir(),
	}, a.collab)
	if err != nil {
		return fmt.Errorf("configuring orchestrator: %w", err)
	}

	report, err := orch.Run(ctx, a.recipe, *matrix, a.variantCfg.Pins)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	a.printReport(report)
	if report.Failed() {
		return fmt.Errorf("%d of %d variants did not build", failedCount(report), len(report.Results))
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func failedCount(report *orchestrator.Report) int {
	counts := report.Counts()
	return counts[orchestrator.StatusFailed] + counts[orchestrator.StatusCancelled]
}
