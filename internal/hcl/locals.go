package hcl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var localsSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "locals"}},
}

// functions are callable from any expression in a problem file.
var functions = map[string]function.Function{
	"ceil":  stdlib.CeilFunc,
	"floor": stdlib.FloorFunc,
	"max":   stdlib.MaxFunc,
	"min":   stdlib.MinFunc,
}

// newEvalContext exposes the resolved locals as `local.<name>`.
func newEvalContext(values map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"local": cty.ObjectVal(values)},
		Functions: functions,
	}
}

// evalLocals gathers the locals of every file and evaluates them in
// dependency order. Locals may reference each other across files.
func evalLocals(bodies []hcl.Body) (*hcl.EvalContext, error) {
	pending := make(map[string]*hcl.Attribute)
	for _, body := range bodies {
		content, _, diags := body.PartialContent(localsSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to read locals: %w", diags)
		}
		for _, block := range content.Blocks {
			attrs, diags := block.Body.JustAttributes()
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to read locals: %w", diags)
			}
			for name, attr := range attrs {
				if prev, dup := pending[name]; dup {
					return nil, fmt.Errorf("local '%s' defined twice, at %s and %s", name, prev.Range, attr.Range)
				}
				pending[name] = attr
			}
		}
	}

	values := make(map[string]cty.Value, len(pending))
	for len(pending) > 0 {
		progressed := false
		for _, name := range sortedNames(pending) {
			attr := pending[name]
			if !referencesResolved(attr.Expr, values) {
				continue
			}
			val, diags := attr.Expr.Value(newEvalContext(values))
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate local '%s': %w", name, diags)
			}
			values[name] = val
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("cannot resolve locals %s: undefined or circular reference", strings.Join(sortedNames(pending), ", "))
		}
	}
	return newEvalContext(values), nil
}

// referencesResolved reports whether every `local.x` the expression reads
// already has a value.
func referencesResolved(expr hcl.Expression, values map[string]cty.Value) bool {
	for _, traversal := range expr.Variables() {
		if traversal.RootName() != "local" || len(traversal) < 2 {
			continue
		}
		step, ok := traversal[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if _, done := values[step.Name]; !done {
			return false
		}
	}
	return true
}

func sortedNames(attrs map[string]*hcl.Attribute) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
