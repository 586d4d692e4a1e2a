package render

import (
	"fmt"

	"github.com/vk/packforge/internal/recipe"
)

// ResolveNode renders a conditional node tree against the environment: every
// `${{ ... }}` expression is expanded, every If condition is evaluated
// exactly once and replaced by its chosen branch, and a chosen branch inside
// a sequence is spliced into the parent at that position. The untaken branch
// is never evaluated or included. The result contains no If nodes; it may be
// nil when a false condition has no else branch.
func ResolveNode(n recipe.Node, env *Env) (recipe.Node, error) {
	switch v := n.(type) {
	case nil:
		return nil, nil
	case recipe.Literal:
		expanded, err := env.Expand(v.Value)
		if err != nil {
			return nil, err
		}
		return recipe.Literal{Value: expanded}, nil
	case recipe.Sequence:
		return resolveSequence(v, env)
	case recipe.Mapping:
		out := recipe.Mapping{Entries: make([]recipe.MapEntry, 0, len(v.Entries))}
		for _, entry := range v.Entries {
			resolved, err := ResolveNode(entry.Value, env)
			if err != nil {
				return nil, err
			}
			if resolved == nil {
				continue
			}
			out.Entries = append(out.Entries, recipe.MapEntry{Key: entry.Key, Value: resolved})
		}
		return out, nil
	case recipe.If:
		branch, err := chooseBranch(v, env)
		if err != nil {
			return nil, err
		}
		return ResolveNode(branch, env)
	default:
		return nil, fmt.Errorf("unsupported node type %T", n)
	}
}

func resolveSequence(seq recipe.Sequence, env *Env) (recipe.Node, error) {
	out := recipe.Sequence{}
	for _, item := range seq.Items {
		cond, isIf := item.(recipe.If)
		if !isIf {
			resolved, err := ResolveNode(item, env)
			if err != nil {
				return nil, err
			}
			if resolved != nil {
				out.Items = append(out.Items, resolved)
			}
			continue
		}

		branch, err := chooseBranch(cond, env)
		if err != nil {
			return nil, err
		}
		if branch == nil {
			continue
		}
		resolved, err := ResolveNode(branch, env)
		if err != nil {
			return nil, err
		}
		switch r := resolved.(type) {
		case nil:
		case recipe.Sequence:
			// Splice the branch's items into the parent sequence.
			out.Items = append(out.Items, r.Items...)
		default:
			out.Items = append(out.Items, resolved)
		}
	}
	return out, nil
}

// chooseBranch evaluates the condition once and returns the taken branch,
// which may be nil for a false condition without an else.
func chooseBranch(cond recipe.If, env *Env) (recipe.Node, error) {
	taken, err := env.EvalSelector(cond.Cond)
	if err != nil {
		return nil, err
	}
	if taken {
		return cond.Then, nil
	}
	return cond.Else, nil
}
