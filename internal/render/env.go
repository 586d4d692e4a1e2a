package render

import (
	"errors"

	"github.com/vk/packforge/internal/selector"
	"github.com/vk/packforge/internal/variant"
	"github.com/zclconf/go-cty/cty/function"
)

// platformFacts are the identifiers the caller binds per invocation rather
// than per variant.
var platformFacts = map[string]bool{
	"platform":        true,
	"target_platform": true,
	"arch":            true,
}

// Platform carries the caller-supplied platform facts for one invocation.
// Empty fields are simply absent from the evaluation environment; a selector
// referencing an absent fact fails with UnresolvedSelectorError.
type Platform struct {
	Platform       string
	TargetPlatform string
	Arch           string
}

// Env returns the platform facts as selector bindings, omitting empty ones.
func (p Platform) Env() map[string]string {
	env := map[string]string{}
	if p.Platform != "" {
		env["platform"] = p.Platform
	}
	if p.TargetPlatform != "" {
		env["target_platform"] = p.TargetPlatform
	}
	if p.Arch != "" {
		env["arch"] = p.Arch
	}
	return env
}

// Env is the evaluation environment for one variant: platform facts, the
// variant's key/value bindings, resolved context entries and the built-in
// functions.
type Env struct {
	vars  map[string]string
	funcs map[string]function.Function
}

// NewEnv assembles the environment for one variant. Context entries are not
// yet resolved; ResolveContext adds them.
func NewEnv(platform Platform, v variant.Variant) *Env {
	vars := platform.Env()
	for key, val := range v.Env() {
		vars[key] = val
	}
	return &Env{vars: vars, funcs: builtins(v)}
}

// bind adds a resolved binding, e.g. a context entry.
func (e *Env) bind(name, value string) {
	e.vars[name] = value
}

// Lookup returns a binding's value.
func (e *Env) Lookup(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// EvalSelector evaluates a selector condition against this environment,
// translating a missing platform fact into UnresolvedSelectorError.
func (e *Env) EvalSelector(cond string) (bool, error) {
	ok, err := selector.Evaluate(cond, e.vars)
	if err != nil {
		var unknown *selector.UnknownVariableError
		if errors.As(err, &unknown) && platformFacts[unknown.Name] {
			return false, &UnresolvedSelectorError{Fact: unknown.Name, Expr: cond}
		}
		return false, err
	}
	return ok, nil
}
