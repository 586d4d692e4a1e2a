// Package selector evaluates boolean platform/variant conditions. A selector
// is an expression over platform facts and variant keys, e.g.
// `platform == "win" and cuda != "none"`. Evaluation is a pure function of
// the expression and the environment for one variant; referencing an
// identifier absent from the environment fails loudly instead of being
// treated as false.
package selector

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// UnknownVariableError reports a selector referencing an identifier that the
// variant matrix does not cover.
type UnknownVariableError struct {
	Name string
	Expr string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q in selector %q", e.Name, e.Expr)
}

// Evaluate evaluates a selector expression against the environment binding
// platform facts and variant keys for one variant.
func Evaluate(expr string, env map[string]string) (bool, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(Normalize(expr)), "selector", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return false, fmt.Errorf("parsing selector %q: %s", expr, diags.Error())
	}

	// Reject unknown identifiers before evaluation so the error names the
	// variable rather than surfacing as an opaque HCL diagnostic.
	for _, traversal := range parsed.Variables() {
		if _, ok := env[traversal.RootName()]; !ok {
			return false, &UnknownVariableError{Name: traversal.RootName(), Expr: expr}
		}
	}

	vars := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vars[k] = cty.StringVal(v)
	}
	val, diags := parsed.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return false, fmt.Errorf("evaluating selector %q: %s", expr, diags.Error())
	}
	if val.Type() != cty.Bool {
		return false, fmt.Errorf("selector %q did not evaluate to a boolean", expr)
	}
	return val.True(), nil
}
