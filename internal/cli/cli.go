package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/packforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("packforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
packforge - a declarative, variant-aware binary package builder.

Usage:
  packforge [options] [RECIPE_PATH]

Arguments:
  RECIPE_PATH
    Path to the recipe YAML file.

Options:
`)
		flagSet.PrintDefaults()
	}

	recipeFlag := flagSet.String("recipe", "", "Path to the recipe file.")
	rFlag := flagSet.String("r", "", "Path to the recipe file (shorthand).")
	variantsFlag := flagSet.String("variants", "", "Path to the variant configuration file.")
	outputDirFlag := flagSet.String("output-dir", "", "Directory receiving the package archives. Defaults to the XDG data dir.")
	workDirFlag := flagSet.String("work-dir", "", "Directory hosting build prefixes and sources. Defaults to the XDG cache dir.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent build workers.")
	prefixLengthFlag := flagSet.Int("prefix-length", 0, "Reserved placeholder length for prefix relocation. 0 uses the default.")
	failFastFlag := flagSet.Bool("fail-fast", false, "Cancel remaining variants after the first failure.")
	platformFlag := flagSet.String("platform", "", "Build platform fact (linux, osx, win). Defaults to the host.")
	targetPlatformFlag := flagSet.String("target-platform", "", "Target platform fact, e.g. linux-64. Defaults to the host.")
	archFlag := flagSet.String("arch", "", "Architecture fact, e.g. x86_64. Defaults to the host.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *recipeFlag != "" {
		path = *recipeFlag
	} else if *rFlag != "" {
		path = *rFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Recipe path determined.", "path", path)

	if path == "" {
		slog.Debug("No recipe path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}
	if platform := strings.ToLower(*platformFlag); platform != "" && platform != "linux" && platform != "osx" && platform != "win" {
		return nil, false, &ExitError{Code: 2, Message: "invalid platform: must be 'linux', 'osx' or 'win'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		RecipePath:     path,
		VariantPath:    *variantsFlag,
		OutputDir:      *outputDirFlag,
		WorkDir:        *workDirFlag,
		Workers:        *workersFlag,
		PrefixLength:   *prefixLengthFlag,
		FailFast:       *failFastFlag,
		Platform:       strings.ToLower(*platformFlag),
		TargetPlatform: strings.ToLower(*targetPlatformFlag),
		Arch:           *archFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
