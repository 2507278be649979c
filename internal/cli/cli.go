package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/gridbalancer/internal/app"
	"github.com/vk/gridbalancer/internal/config"
	"github.com/vk/gridbalancer/internal/report"
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
	flagSet := flag.NewFlagSet("gridbalancer", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridbalancer - Splits an operation graph into epochs that fit a core grid.

Usage:
  gridbalancer [options] [GRID_PATH]

Arguments:
  GRID_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	gridFlag := flagSet.String("grid", "", "Path to the problem file or directory.")
	gFlag := flagSet.String("g", "", "Path to the problem file or directory (shorthand).")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	outputFlag := flagSet.String("output", "text", "Report format. Options: 'text', 'yaml' or 'json'.")
	policyFlag := flagSet.String("policy", "", "Override the balancer policy. Options: 'ribbon' or 'maximize_t_minimize_grid'.")
	targetFlag := flagSet.Int("target-cycles", 0, "Override the per-op cycle budget of the ribbon policy. 0 keeps the file setting.")
	prepassFlag := flagSet.Bool("prepass", false, "Drop known-suboptimal op models before ribbon selection.")
	noCacheFlag := flagSet.Bool("disable-cache", false, "Re-estimate every candidate instead of caching validated op models.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *gridFlag != "" {
		path = *gridFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Grid path determined.", "path", path)

	if path == "" {
		slog.Debug("No grid path provided, printing usage and exiting.")
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

	outputFormat, err := report.ParseFormat(strings.ToLower(*outputFlag))
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: "invalid output: " + err.Error()}
	}

	policy := strings.ToLower(*policyFlag)
	switch policy {
	case "", config.PolicyRibbon, config.PolicyMaximizeTMinimizeGrid:
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid policy: must be 'ribbon' or 'maximize_t_minimize_grid'"}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		GridPath:      path,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		OutputFormat:  outputFormat,
		Policy:        policy,
		TargetCycles:  *targetFlag,
		RibbonPrepass: *prepassFlag,
		DisableCache:  *noCacheFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
