package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/gridbalancer/internal/config"
	"github.com/vk/gridbalancer/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model
}

// NewApp is the constructor for the main application. The report goes to
// outW and the logs to logW. It panics when the problem files cannot be
// loaded or describe an invalid problem.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all configuration into the format-agnostic model first.
	cfgModel, err := loader.Load(ctx, appConfig.GridPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	applyOverrides(&cfgModel.Balancer, appConfig)
	if err := cfgModel.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	logger.Debug("Configuration validated.", "policy", cfgModel.Balancer.Policy, "capacity", cfgModel.Device.Capacity())

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		model:  cfgModel,
	}
}

// applyOverrides lets command-line settings win over the balancer block.
func applyOverrides(b *config.Balancer, cfg *Config) {
	if cfg.Policy != "" {
		b.Policy = cfg.Policy
	}
	if cfg.TargetCycles > 0 {
		b.TargetCycles = cfg.TargetCycles
	}
	if cfg.RibbonPrepass {
		b.RibbonPrepass = true
	}
	if cfg.DisableCache {
		b.DisableCache = true
	}
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
