package render

import (
	"fmt"
	"strings"
)

// TemplateError reports a malformed or unevaluable template expression.
type TemplateError struct {
	Expr   string
	Detail string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error in %q: %s", e.Expr, e.Detail)
}

// UnresolvedSelectorError reports a selector needing a platform fact the
// caller did not supply.
type UnresolvedSelectorError struct {
	Fact string
	Expr string
}

func (e *UnresolvedSelectorError) Error() string {
	return fmt.Sprintf("selector %q needs platform fact %q, which was not supplied", e.Expr, e.Fact)
}

// CyclicContextReferenceError reports context entries that reference each
// other in a cycle.
type CyclicContextReferenceError struct {
	Names []string
}

func (e *CyclicContextReferenceError) Error() string {
	return fmt.Sprintf("context entries form a reference cycle: %s", strings.Join(e.Names, ", "))
}
