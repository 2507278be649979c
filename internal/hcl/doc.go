// Package hcl provides the HCL implementation of the config.Loader interface.
// It parses balancing problem files, evaluates their locals and translates the
// decoded blocks into the format-agnostic config.Model.
package hcl
