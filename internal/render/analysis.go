package render

import (
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/packforge/internal/recipe"
	"github.com/vk/packforge/internal/selector"
	"github.com/vk/packforge/internal/variant"
	"github.com/zclconf/go-cty/cty"
)

// UsedKeys statically determines the set of variant keys the recipe
// references: identifiers in template expressions and selector conditions
// (both branches of every conditional count; the matrix must cover them
// all), minus the recipe's own context entry names and the platform facts,
// plus the keys implied by compiler() calls. Keys are returned normalized.
func UsedKeys(r *recipe.Recipe) (map[string]bool, error) {
	acc := &analyzer{refs: map[string]bool{}, langs: map[string]bool{}}

	for _, entry := range r.Context {
		if err := acc.addTemplate(entry.Expr); err != nil {
			return nil, err
		}
	}
	for _, s := range []string{r.Package.Name, r.Package.Version, r.Source.URL, r.Source.SHA256} {
		if err := acc.addTemplate(s); err != nil {
			return nil, err
		}
	}
	for _, n := range []recipe.Node{r.Build.Script, r.Requirements.Build, r.Requirements.Host, r.Requirements.Run, r.Tests} {
		if err := acc.addNode(n); err != nil {
			return nil, err
		}
	}
	// A bare requirement name is itself a key reference: a config axis named
	// after the package varies it, and pin_run_as_build needs the chosen
	// value in the variant.
	for _, n := range []recipe.Node{r.Requirements.Build, r.Requirements.Host, r.Requirements.Run} {
		acc.addRequirementNames(n)
	}

	contextNames := map[string]bool{}
	for _, entry := range r.Context {
		contextNames[entry.Name] = true
	}

	used := map[string]bool{}
	for ref := range acc.refs {
		if contextNames[ref] || platformFacts[ref] {
			continue
		}
		used[variant.NormalizeKey(ref)] = true
	}
	for lang := range acc.langs {
		used[variant.NormalizeKey(lang+"_compiler")] = true
		used[variant.NormalizeKey(lang+"_compiler_version")] = true
	}
	return used, nil
}

// analyzer accumulates variable references and compiler() languages across
// every expression in a recipe.
type analyzer struct {
	refs  map[string]bool
	langs map[string]bool
}

// addTemplate analyzes the `${{ ... }}` expressions embedded in a scalar.
func (a *analyzer) addTemplate(s string) error {
	exprs, err := templateExprs(s)
	if err != nil {
		return err
	}
	for _, expr := range exprs {
		if err := a.addExpr(expr); err != nil {
			return err
		}
	}
	return nil
}

// addExpr analyzes one bare expression, e.g. a selector condition.
func (a *analyzer) addExpr(expr string) error {
	parsed, diags := hclsyntax.ParseExpression([]byte(selector.Normalize(expr)), "analysis", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return &TemplateError{Expr: expr, Detail: diags.Error()}
	}
	for _, traversal := range parsed.Variables() {
		a.refs[traversal.RootName()] = true
	}
	hclsyntax.VisitAll(parsed, func(n hclsyntax.Node) hcl.Diagnostics {
		call, ok := n.(*hclsyntax.FunctionCallExpr)
		if !ok || call.Name != "compiler" || len(call.Args) != 1 {
			return nil
		}
		val, valDiags := call.Args[0].Value(nil)
		if !valDiags.HasErrors() && val.Type() == cty.String {
			a.langs[val.AsString()] = true
		}
		return nil
	})
	return nil
}

func (a *analyzer) addNode(n recipe.Node) error {
	switch v := n.(type) {
	case nil:
		return nil
	case recipe.Literal:
		return a.addTemplate(v.Value)
	case recipe.Sequence:
		for _, item := range v.Items {
			if err := a.addNode(item); err != nil {
				return err
			}
		}
	case recipe.Mapping:
		for _, entry := range v.Entries {
			if err := a.addNode(entry.Value); err != nil {
				return err
			}
		}
	case recipe.If:
		if err := a.addExpr(v.Cond); err != nil {
			return err
		}
		if err := a.addNode(v.Then); err != nil {
			return err
		}
		if err := a.addNode(v.Else); err != nil {
			return err
		}
	}
	return nil
}

// addRequirementNames collects bare package names from a requirement list:
// literals with no embedded expression and no version constraint. Both
// branches of a conditional are walked.
func (a *analyzer) addRequirementNames(n recipe.Node) {
	switch v := n.(type) {
	case recipe.Literal:
		if strings.Contains(v.Value, exprOpen) {
			return
		}
		if fields := strings.Fields(v.Value); len(fields) == 1 {
			a.refs[fields[0]] = true
		}
	case recipe.Sequence:
		for _, item := range v.Items {
			a.addRequirementNames(item)
		}
	case recipe.If:
		a.addRequirementNames(v.Then)
		a.addRequirementNames(v.Else)
	}
}

// exprRefs returns the sorted variable roots referenced by the template
// expressions embedded in a scalar.
func exprRefs(s string) ([]string, error) {
	acc := &analyzer{refs: map[string]bool{}, langs: map[string]bool{}}
	if err := acc.addTemplate(s); err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(acc.refs))
	for ref := range acc.refs {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs, nil
}

// templateExprs extracts the inner expression strings from a scalar's
// `${{ ... }}` blocks.
func templateExprs(s string) ([]string, error) {
	var exprs []string
	rest := s
	for {
		idx := strings.Index(rest, exprOpen)
		if idx < 0 {
			return exprs, nil
		}
		rest = rest[idx+len(exprOpen):]
		end := strings.Index(rest, exprClose)
		if end < 0 {
			return nil, &TemplateError{Expr: s, Detail: "unterminated expression"}
		}
		exprs = append(exprs, strings.TrimSpace(rest[:end]))
		rest = rest[end+len(exprClose):]
	}
}
