// Package config defines the format-agnostic configuration model for the
// balancer, along with the Loader interface for reading it from various
// sources.
//
// The `config.Model` is the single source of truth for graph construction,
// the static op model catalog and the balancer tunables. Concrete loaders,
// such as the HCL one, live in separate packages.
package config
