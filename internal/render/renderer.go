package render

import (
	"strings"

	"github.com/vk/packforge/internal/recipe"
	"github.com/vk/packforge/internal/variant"
)

// Requirements are the concrete requirement lists of a rendered recipe.
type Requirements struct {
	Build []string
	Host  []string
	Run   []string
}

// Rendered is the fully concrete output of rendering one variant: resolved
// package identity, concrete requirement lists, the ordered build script,
// concrete test specs and a content hash used for build deduplication.
type Rendered struct {
	Name         string
	Version      string
	BuildNumber  int
	Source       recipe.Source
	Requirements Requirements
	Script       []string
	Tests        []recipe.TestSpec
	Variant      variant.Variant
	Hash         string
}

// Render resolves the recipe against one variant. Pins come from the variant
// config's pin_run_as_build section and apply to run and host requirements
// naming a pinned package; an explicit conflicting pin in the recipe fails
// with PinConflictError.
func Render(r *recipe.Recipe, v variant.Variant, pins map[string]variant.Pin, platform Platform) (*Rendered, error) {
	env := NewEnv(platform, v)
	if err := ResolveContext(r.Context, env); err != nil {
		return nil, err
	}

	out := &Rendered{BuildNumber: r.Build.Number, Variant: v}

	var err error
	if out.Name, err = env.Expand(r.Package.Name); err != nil {
		return nil, err
	}
	if out.Version, err = env.Expand(r.Package.Version); err != nil {
		return nil, err
	}
	if out.Source.URL, err = env.Expand(r.Source.URL); err != nil {
		return nil, err
	}
	if out.Source.SHA256, err = env.Expand(r.Source.SHA256); err != nil {
		return nil, err
	}

	if out.Requirements.Build, err = renderList(r.Requirements.Build, env); err != nil {
		return nil, err
	}
	if out.Requirements.Host, err = renderList(r.Requirements.Host, env); err != nil {
		return nil, err
	}
	if out.Requirements.Run, err = renderList(r.Requirements.Run, env); err != nil {
		return nil, err
	}
	if out.Requirements.Host, err = applyPins(out.Requirements.Host, v, pins); err != nil {
		return nil, err
	}
	if out.Requirements.Run, err = applyPins(out.Requirements.Run, v, pins); err != nil {
		return nil, err
	}

	if out.Script, err = renderList(r.Build.Script, env); err != nil {
		return nil, err
	}

	tests, err := ResolveNode(r.Tests, env)
	if err != nil {
		return nil, err
	}
	if out.Tests, err = recipe.ParseTests(tests); err != nil {
		return nil, err
	}

	out.Hash = contentHash(out)
	return out, nil
}

func renderList(n recipe.Node, env *Env) ([]string, error) {
	resolved, err := ResolveNode(n, env)
	if err != nil {
		return nil, err
	}
	return recipe.Strings(resolved)
}

// applyPins rewrites requirements naming a pinned package to carry the pin
// derived from the variant's chosen value. Requirements whose package has no
// pin entry, or whose key the variant does not carry, pass through.
func applyPins(reqs []string, v variant.Variant, pins map[string]variant.Pin) ([]string, error) {
	if len(pins) == 0 {
		return reqs, nil
	}
	out := make([]string, 0, len(reqs))
	for _, req := range reqs {
		fields := strings.Fields(req)
		if len(fields) == 0 {
			continue
		}
		key := variant.NormalizeKey(fields[0])
		pin, pinned := pins[key]
		if !pinned {
			out = append(out, req)
			continue
		}
		value, chosen := v.Get(key)
		if !chosen {
			out = append(out, req)
			continue
		}
		derived, err := pin.Apply(value)
		if err != nil {
			return nil, err
		}
		if len(fields) > 1 {
			explicit := strings.Join(fields[1:], " ")
			if explicit != derived {
				return nil, &variant.PinConflictError{Package: fields[0], Explicit: explicit, Derived: derived}
			}
			out = append(out, req)
			continue
		}
		out = append(out, fields[0]+" "+derived)
	}
	return out, nil
}
