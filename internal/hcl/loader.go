package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gridbalancer/internal/config"
	"github.com/vk/gridbalancer/internal/ctxlog"
	"github.com/vk/gridbalancer/internal/fsutil"
)

// ErrNoFiles is returned when none of the given paths holds an .hcl file.
var ErrNoFiles = errors.New("no .hcl files found")

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file under paths and merges them into one model.
// Locals are evaluated first so any file may reference them.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	bodies := make([]hcl.Body, 0, len(hclFiles))
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		bodies = append(bodies, hclFile.Body)
	}

	evalCtx, err := evalLocals(bodies)
	if err != nil {
		return nil, err
	}

	model := &config.Model{Balancer: config.NewBalancer()}
	var (
		deviceSeen   bool
		balancerSeen bool
	)
	for i, body := range bodies {
		var root fileRoot
		if diags := gohcl.DecodeBody(body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", hclFiles[i], diags)
		}

		for _, d := range root.Devices {
			if deviceSeen {
				return nil, fmt.Errorf("duplicate device block in %s", hclFiles[i])
			}
			deviceSeen = true
			model.Device = translateDevice(d)
		}
		for _, b := range root.Balancers {
			if balancerSeen {
				return nil, fmt.Errorf("duplicate balancer block in %s", hclFiles[i])
			}
			balancerSeen = true
			applyBalancer(&model.Balancer, b)
		}
		for _, op := range root.Ops {
			model.Ops = append(model.Ops, translateOp(op))
		}
	}
	if !deviceSeen {
		return nil, errors.New("missing device block")
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "ops", len(model.Ops), "capacity", model.Device.Capacity())
	return model, nil
}
