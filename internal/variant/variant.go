package variant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Variant is one concrete assignment of values to the variant keys a recipe
// depends on. It is immutable: produced by Resolve, consumed by rendering.
type Variant struct {
	values map[string]string
}

// New builds a variant from a key/value map. Keys are normalized.
func New(values map[string]string) Variant {
	normalized := make(map[string]string, len(values))
	for k, v := range values {
		normalized[NormalizeKey(k)] = v
	}
	return Variant{values: normalized}
}

// Get returns the chosen value for a variant key.
func (v Variant) Get(key string) (string, bool) {
	val, ok := v.values[NormalizeKey(key)]
	return val, ok
}

// Keys returns the variant's keys in sorted order.
func (v Variant) Keys() []string {
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys in the variant.
func (v Variant) Len() int {
	return len(v.values)
}

// Env returns a copy of the variant's bindings for expression evaluation.
func (v Variant) Env() map[string]string {
	env := make(map[string]string, len(v.values))
	for k, val := range v.values {
		env[k] = val
	}
	return env
}

// Hash returns the variant's identity: a blake3 digest over its sorted
// key/value pairs. Two variants with equal assignments hash identically.
func (v Variant) Hash() string {
	h := blake3.New()
	for _, key := range v.Keys() {
		fmt.Fprintf(h, "%s=%s\x00", key, v.values[key])
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

// String renders the variant for logs and reports, e.g. "python=3.11 numpy=1.26".
func (v Variant) String() string {
	if len(v.values) == 0 {
		return "(default)"
	}
	parts := make([]string, 0, len(v.values))
	for _, key := range v.Keys() {
		parts = append(parts, key+"="+v.values[key])
	}
	return strings.Join(parts, " ")
}
