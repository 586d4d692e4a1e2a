package recipe

import "fmt"

// Node is the internal representation of any recipe field that may vary by
// selector. It is a tagged union: Literal, Sequence, Mapping or If.
type Node interface {
	isNode()
}

// Literal is a scalar value. It may contain template expressions that are
// expanded during rendering.
type Literal struct {
	Value string
}

// Sequence is an ordered list of nodes. When an If node sits inside a
// sequence, the chosen branch's items are spliced into the sequence at that
// position during rendering.
type Sequence struct {
	Items []Node
}

// MapEntry is a single key/value pair of a Mapping. Entries preserve
// document order.
type MapEntry struct {
	Key   string
	Value Node
}

// Mapping is an ordered set of key/value pairs.
type Mapping struct {
	Entries []MapEntry
}

// If is a conditional branch. Cond is a selector expression; exactly one of
// Then/Else is rendered. Else may be nil, in which case a false condition
// contributes an empty result.
type If struct {
	Cond string
	Then Node
	Else Node
}

func (Literal) isNode()  {}
func (Sequence) isNode() {}
func (Mapping) isNode()  {}
func (If) isNode()       {}

// Get returns the value for key in a Mapping, or nil if absent.
func (m Mapping) Get(key string) Node {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Strings flattens a concrete (If-free) node into a list of scalar values.
// A nil node yields an empty list, a Literal yields one element and a
// Sequence yields its items in order. Mappings and remaining conditionals
// are rejected.
func Strings(n Node) ([]string, error) {
	switch v := n.(type) {
	case nil:
		return nil, nil
	case Literal:
		return []string{v.Value}, nil
	case Sequence:
		out := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			lit, ok := item.(Literal)
			if !ok {
				return nil, fmt.Errorf("%w: expected scalar list item, got %T", ErrConfig, item)
			}
			out = append(out, lit.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected scalar or list, got %T", ErrConfig, n)
	}
}
