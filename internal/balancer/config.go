package balancer

import (
	"github.com/vk/gridbalancer/internal/config"
	"github.com/vk/gridbalancer/internal/placer"
)

// Config holds the tunables of one run. It is read-only for the run's
// duration.
type Config struct {
	// Policy selects the heuristic (config.PolicyRibbon or
	// config.PolicyMaximizeTMinimizeGrid).
	Policy string
	// Grid is the device grid; its core count is the epoch capacity.
	Grid placer.Grid
	// TargetCycles is the ribbon policy's soft per-op cycle ceiling.
	TargetCycles int
	// RibbonPrepass drops known-suboptimal op model classes before scoring.
	RibbonPrepass bool
	// MaxEpochRetries bounds how many times a single node may force the
	// current epoch closed to retry in a fresh one.
	MaxEpochRetries int
	// DisableCache runs without the validated cache.
	DisableCache bool
}

// DefaultConfig returns a ribbon configuration for the given grid.
func DefaultConfig(grid placer.Grid) Config {
	return ConfigFromModel(&config.Model{
		Device:   config.Device{Rows: grid.Rows, Cols: grid.Cols},
		Balancer: config.NewBalancer(),
	})
}

// ConfigFromModel extracts the run tunables from a loaded config model.
func ConfigFromModel(m *config.Model) Config {
	return Config{
		Policy:          m.Balancer.Policy,
		Grid:            placer.Grid{Rows: m.Device.Rows, Cols: m.Device.Cols},
		TargetCycles:    m.Balancer.TargetCycles,
		RibbonPrepass:   m.Balancer.RibbonPrepass,
		MaxEpochRetries: m.Balancer.MaxEpochRetries,
		DisableCache:    m.Balancer.DisableCache,
	}
}

// Capacity is the number of cores one epoch may hold.
func (c Config) Capacity() int {
	return c.Grid.Cores()
}
