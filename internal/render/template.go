package render

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/packforge/internal/selector"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Template expressions are delimited by `${{` and `}}`.
const (
	exprOpen  = "${{"
	exprClose = "}}"
)

// Expand evaluates every embedded `${{ ... }}` expression in s against the
// environment and splices the results into the surrounding text.
func (e *Env) Expand(s string) (string, error) {
	if !strings.Contains(s, exprOpen) {
		return s, nil
	}
	var out strings.Builder
	rest := s
	for {
		idx := strings.Index(rest, exprOpen)
		if idx < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:idx])
		rest = rest[idx+len(exprOpen):]

		end := strings.Index(rest, exprClose)
		if end < 0 {
			return "", &TemplateError{Expr: s, Detail: "unterminated expression"}
		}
		value, err := e.evalString(strings.TrimSpace(rest[:end]))
		if err != nil {
			return "", err
		}
		out.WriteString(value)
		rest = rest[end+len(exprClose):]
	}
	return out.String(), nil
}

// evalString evaluates one expression to its string value.
func (e *Env) evalString(expr string) (string, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(selector.Normalize(expr)), "template", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return "", &TemplateError{Expr: expr, Detail: diags.Error()}
	}

	for _, traversal := range parsed.Variables() {
		if _, ok := e.vars[traversal.RootName()]; !ok {
			return "", &selector.UnknownVariableError{Name: traversal.RootName(), Expr: expr}
		}
	}

	vars := make(map[string]cty.Value, len(e.vars))
	for k, v := range e.vars {
		vars[k] = cty.StringVal(v)
	}
	val, diags := parsed.Value(&hcl.EvalContext{Variables: vars, Functions: e.funcs})
	if diags.HasErrors() {
		return "", &TemplateError{Expr: expr, Detail: diags.Error()}
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", &TemplateError{Expr: expr, Detail: err.Error()}
	}
	return str.AsString(), nil
}
