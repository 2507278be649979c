package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a problem file may contain.
type fileRoot struct {
	Devices   []*deviceBlock   `hcl:"device,block"`
	Balancers []*balancerBlock `hcl:"balancer,block"`
	Locals    []*localsBlock   `hcl:"locals,block"`
	Ops       []*opBlock       `hcl:"op,block"`
}

type deviceBlock struct {
	Rows int `hcl:"rows"`
	Cols int `hcl:"cols"`
}

// balancerBlock leaves every tunable optional; nil means the default.
type balancerBlock struct {
	Policy          *string `hcl:"policy,optional"`
	TargetCycles    *int    `hcl:"target_cycles,optional"`
	RibbonPrepass   *bool   `hcl:"ribbon_prepass,optional"`
	MaxEpochRetries *int    `hcl:"max_epoch_retries,optional"`
	DisableCache    *bool   `hcl:"disable_cache,optional"`
}

// localsBlock is evaluated ahead of decoding, so its body is kept raw.
type localsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type opBlock struct {
	Name     string          `hcl:"name,label"`
	Kind     *string         `hcl:"kind,optional"`
	Operands []string        `hcl:"operands,optional"`
	OpModels []*opModelBlock `hcl:"op_model,block"`
}

type opModelBlock struct {
	GridR         int      `hcl:"grid_r"`
	GridC         int      `hcl:"grid_c"`
	T             int      `hcl:"t"`
	Cycles        int      `hcl:"cycles"`
	Classes       []string `hcl:"classes,optional"`
	OperandTMatch bool     `hcl:"operand_t_match,optional"`
}
