package app

import (
	"errors"

	"github.com/vk/gridbalancer/internal/report"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // hcl file or directory

	LogFormat    string
	LogLevel     string
	OutputFormat report.Format

	// Overrides for the balancer block; zero values keep the file settings.
	Policy        string
	TargetCycles  int
	RibbonPrepass bool
	DisableCache  bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = report.FormatText
	}
	if _, err := report.ParseFormat(string(cfg.OutputFormat)); err != nil {
		return nil, err
	}
	if cfg.TargetCycles < 0 {
		return nil, errors.New("target cycles cannot be negative")
	}
	return &cfg, nil
}
