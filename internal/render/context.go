package render

import "github.com/vk/packforge/internal/recipe"

// ResolveContext resolves the recipe's context entries into the environment
// in one topological pass. Entries may reference variant keys, platform
// facts and other context entries; a reference cycle fails with
// CyclicContextReferenceError naming the entries left unresolved.
func ResolveContext(entries []recipe.ContextEntry, env *Env) error {
	pending := make([]recipe.ContextEntry, len(entries))
	copy(pending, entries)

	pendingNames := map[string]bool{}
	for _, entry := range pending {
		pendingNames[entry.Name] = true
	}

	for len(pending) > 0 {
		progressed := false
		remaining := pending[:0]
		for _, entry := range pending {
			blocked, err := referencesPending(entry.Expr, pendingNames)
			if err != nil {
				return err
			}
			if blocked {
				remaining = append(remaining, entry)
				continue
			}
			value, err := env.Expand(entry.Expr)
			if err != nil {
				return err
			}
			env.bind(entry.Name, value)
			delete(pendingNames, entry.Name)
			progressed = true
		}
		pending = remaining
		if !progressed {
			names := make([]string, len(pending))
			for i, entry := range pending {
				names[i] = entry.Name
			}
			return &CyclicContextReferenceError{Names: names}
		}
	}
	return nil
}

// referencesPending reports whether expr references a context entry that has
// not been resolved yet. An entry is pending during its own consideration,
// so a self-reference blocks forever and surfaces as a cycle.
func referencesPending(expr string, pendingNames map[string]bool) (bool, error) {
	refs, err := exprRefs(expr)
	if err != nil {
		return false, err
	}
	for _, ref := range refs {
		if pendingNames[ref] {
			return true, nil
		}
	}
	return false, nil
}
